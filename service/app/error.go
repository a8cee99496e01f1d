package app

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for App services.
var (
	ErrInvalidApp       = errors.New("invalid app")
	ErrInvalidNamespace = errors.New("invalid namespace")
	ErrNotFound         = errors.New("app not found")
)

// Error wraps common App errors.
type Error struct {
	err error
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// IsInvalidApp indicates if err is ErrInvalidApp.
func IsInvalidApp(err error) bool {
	return unwrapError(err) == ErrInvalidApp
}

// IsInvalidNamespace indicates if err is ErrInvalidNamespace.
func IsInvalidNamespace(err error) bool {
	return unwrapError(err) == ErrInvalidNamespace
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
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
