package errors

import (
	"errors"
	"fmt"
)

// Failure classes of a monitoring cycle. Only ErrConfiguration is ever
// allowed to reach the process boundary; everything else is handled at the
// account or post level.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrAccountSource = errors.New("account source error")
	ErrFetch         = errors.New("fetch error")
	ErrArchive       = errors.New("archive error")
	ErrStorage       = errors.New("storage error")
	ErrNotify        = errors.New("notify error")
	ErrNotFound      = errors.New("not found")
)

// Error carries an optional machine-readable code next to the message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(message string) error {
	return &Error{Message: message}
}

func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WrapClass ties err to one of the failure-class sentinels so callers can
// match the class with errors.Is while keeping the original cause.
func WrapClass(class, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: fmt.Errorf("%w: %w", class, err)}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
