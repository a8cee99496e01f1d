// Package limiter provides request rate limiting backed by shared state.
package limiter

import "time"

// Limitee describes the quota to enforce for one consumer.
type Limitee struct {
	Hash       string
	Limit      int64
	WindowSize time.Duration
}

// Limiter enforces quotas over fixed time windows.
type Limiter interface {
	// Request consumes one hit for the limitee and returns the remaining
	// quota together with the time the current window ends. A negative
	// remainder means the limit is exhausted.
	Request(*Limitee) (int64, time.Time, error)
}
