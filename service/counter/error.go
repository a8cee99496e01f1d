package counter

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Counter services and sources.
var (
	ErrEmptySource     = errors.New("empty source")
	ErrInvalidCounter  = errors.New("invalid counter")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrNotFound        = errors.New("counter not found")
	ErrSourceSaturated = errors.New("source saturated")
)

// Error wraps common Counter errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsEmptySource indicates if err is ErrEmptySource.
func IsEmptySource(err error) bool {
	return unwrapError(err) == ErrEmptySource
}

// IsInvalidCounter indicates if err is ErrInvalidCounter.
func IsInvalidCounter(err error) bool {
	return unwrapError(err) == ErrInvalidCounter
}

// IsInvalidPeriod indicates if err is ErrInvalidPeriod.
func IsInvalidPeriod(err error) bool {
	return unwrapError(err) == ErrInvalidPeriod
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

// IsSourceSaturated indicates if err is ErrSourceSaturated.
func IsSourceSaturated(err error) bool {
	return unwrapError(err) == ErrSourceSaturated
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err,
			fmt.Sprintf(format, args...),
		),
	}
}
