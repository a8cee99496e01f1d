// Package source provides the shared behaviour of queue backed sources.
package source

// Acker confirms the finished consumption of a message.
type Acker interface {
	Ack(id string) error
}
