package errors

import (
	"errors"
	"net/http"
	"strings"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Kind classifies an Error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindStorage
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindTransport:
		return "transport"
	default:
		return "internal"
	}
}

// Error is the domain error: a kind, a message safe to describe the failure
// and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to the HTTP status returned to the client.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string, cause error) error {
	return &Error{Kind: KindAuth, Message: message, Err: cause}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Storage wraps a database-layer failure. op names the failed operation.
func Storage(op string, cause error) error {
	return &Error{Kind: KindStorage, Message: op, Err: cause}
}

// Transport wraps a mail delivery failure. op names the failed delivery.
func Transport(op string, cause error) error {
	return &Error{Kind: KindTransport, Message: op, Err: cause}
}

func Internal(message string, cause error) error {
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}

// KindOf returns the kind of the outermost Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsAuth(err error) bool {
	return err != nil && KindOf(err) == KindAuth
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

// Chain renders err and every cause on its own line, for logs only.
func Chain(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(head(err))
	b.WriteString("\n")
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString("\nCaused by:\n\t")
		b.WriteString(head(cause))
	}
	return b.String()
}

// head is the message of err without the text of its causes.
func head(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	msg := err.Error()
	if cause := errors.Unwrap(err); cause != nil {
		msg = strings.TrimSuffix(msg, ": "+cause.Error())
	}
	return msg
}

// Standard library helpers, so callers importing this package as "errors"
// keep them.

func New(text string) error         { return errors.New(text) }
func Is(err, target error) bool     { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
func Join(errs ...error) error      { return errors.Join(errs...) }
