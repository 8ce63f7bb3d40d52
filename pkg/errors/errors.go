package errors

import (
	goErrors "errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return goErrors.New(msg)
}

// contextError wraps an error with a description of what was being done when
// the error occurred.
type contextError struct {
	context string
	cause   error
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err contextError) Unwrap() error {
	return err.cause
}

// WithContext adds context to the given error. The original error can be
// retrieved with RootCause. If err is nil, WithContext returns nil.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{context: context, cause: err}
}

// RootCause returns the innermost error wrapped by WithContext.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.cause
	}
}

// FriendlyError is an error whose message is meant to be shown directly to
// the user.
type FriendlyError struct {
	msg string
}

// NewFriendlyError creates a FriendlyError with the formatted message.
func NewFriendlyError(msg string, args ...interface{}) error {
	return FriendlyError{fmt.Sprintf(msg, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message that should be shown to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

type friendly interface {
	FriendlyMessage() string
}

// IsFriendly returns whether the root cause of err has a message meant for
// users.
func IsFriendly(err error) bool {
	_, ok := RootCause(err).(friendly)
	return ok
}

// GetPrintableMessage returns the message that should be shown to the user
// for err. If the root cause is friendly, its message is printed without the
// added context.
func GetPrintableMessage(err error) string {
	if friendlyErr, ok := RootCause(err).(friendly); ok {
		return friendlyErr.FriendlyMessage()
	}
	return err.Error()
}
