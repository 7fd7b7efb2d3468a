package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies failures crossing a component boundary.
type Kind string

const (
	Unknown                  Kind = "unknown"
	FetchError               Kind = "fetch_error"
	ExtractionError          Kind = "extraction_error"
	ReauthenticationRequired Kind = "reauthentication_required"
	TransientTokenError      Kind = "transient_token_error"
	NotAuthorized            Kind = "not_authorized"
	AuthenticationError      Kind = "authentication_error"
	PermissionError          Kind = "permission_error"
	PlatformError            Kind = "platform_error"
	ValidationError          Kind = "validation_error"
	Duplicate                Kind = "duplicate"
	NotFound                 Kind = "not_found"
	Persistence              Kind = "persistence"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Wrapf(kind Kind, op string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
