// Package sqs bundles common SQS concerns like message construction and
// polling defaults.
package sqs

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// Message attributes.
const (
	AttributeAll    = "All"
	AttributeSentAt = "SentAt"

	FormatSentAt = "2006-01-02 15:04:05.999999999 -0700 MST"

	TypeString = "String"
)

// Polling timeouts in seconds.
var (
	TimeoutVisibility int64 = 60
	TimeoutWait       int64 = 10
)

// API is the surface of SQS operations in use.
type API interface {
	DeleteMessage(*sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	GetQueueUrl(*sqs.GetQueueUrlInput) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(*sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	SendMessage(*sqs.SendMessageInput) (*sqs.SendMessageOutput, error)
}

// MessageInput constructs a message carrying body stamped with the SentAt
// attribute.
func MessageInput(body []byte, queueURL string) *sqs.SendMessageInput {
	now := time.Now().Format(FormatSentAt)

	return &sqs.SendMessageInput{
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			AttributeSentAt: {
				DataType:    aws.String(TypeString),
				StringValue: aws.String(now),
			},
		},
		MessageBody: aws.String(string(body)),
		QueueUrl:    aws.String(queueURL),
	}
}

// ReceiveMessage long-polls the queue for the next message including all
// attributes.
func ReceiveMessage(api API, queueURL string) (*sqs.ReceiveMessageOutput, error) {
	return api.ReceiveMessage(&sqs.ReceiveMessageInput{
		MessageAttributeNames: []*string{
			aws.String(AttributeAll),
		},
		QueueUrl:          aws.String(queueURL),
		VisibilityTimeout: aws.Int64(TimeoutVisibility),
		WaitTimeSeconds:   aws.Int64(TimeoutWait),
	})
}
