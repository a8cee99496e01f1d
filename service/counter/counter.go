// Package counter maintains durable counts bucketed by time period.
package counter

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/tallier/tallier/platform/service"
	"github.com/tallier/tallier/platform/source"
)

// KeySeparator joins the parts of a counter identity.
const KeySeparator = "|"

// Counter is the durable record of a single counter bucket.
type Counter struct {
	Count       int64      `json:"count"`
	Name        string     `json:"name"`
	PeriodType  PeriodType `json:"period_type"`
	PeriodScope string     `json:"period_scope"`
}

// Validate checks for semantic correctness.
func (c *Counter) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}

	if !c.PeriodType.Valid() {
		return wrapError(ErrInvalidCounter, "unsupported period type '%s'", c.PeriodType)
	}

	if c.PeriodScope == "" {
		return wrapError(ErrInvalidCounter, "period scope must be set")
	}

	if c.Count < 0 {
		return wrapError(ErrInvalidCounter, "count must not be negative")
	}

	return nil
}

// KeyID assembles the identity of the bucket tm falls into for the given
// granularity. The name leads so keys of one counter group together when
// sorted.
func KeyID(name string, t PeriodType, tm time.Time) string {
	return name + KeySeparator + string(t) + KeySeparator + Scope(t, tm)
}

// ValidateName checks name for use as leading key part.
func ValidateName(name string) error {
	if name == "" {
		return wrapError(ErrInvalidCounter, "name must be set")
	}

	if strings.Contains(name, KeySeparator) {
		return wrapError(ErrInvalidCounter, "name must not contain '%s'", KeySeparator)
	}

	if !govalidator.IsPrintableASCII(name) {
		return wrapError(ErrInvalidCounter, "name must be printable ascii")
	}

	return nil
}

// List is a Counter collection.
type List []*Counter

// Consumer observes scheduled writebacks.
type Consumer interface {
	Consume() (*FlushTask, error)
}

// FlushTask transports a single scheduled writeback.
type FlushTask struct {
	AckID      string
	ID         string
	Name       string
	Namespace  string
	Period     string
	PeriodType PeriodType
	SentAt     time.Time
}

// Producer schedules a writeback for a counter bucket.
type Producer interface {
	Propagate(namespace, name string, periodType PeriodType, period string) (string, error)
}

// Service for counter interactions.
type Service interface {
	service.Lifecycle

	Get(namespace, name string, periodType PeriodType, periodScope string) (*Counter, error)
	Put(namespace string, counter *Counter) (*Counter, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Source encapsulates writeback scheduling operations.
type Source interface {
	source.Acker
	Consumer
	Producer
}

// SourceMiddleware is a chainable behaviour modifier for Source.
type SourceMiddleware func(Source) Source
