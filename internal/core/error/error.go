package errx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is used when a key is missing.
	RedisNotFoundMessage = "redis key not found"
)

// Kind classifies a failure so callers can decide whether to retry or fall back.
type Kind string

const (
	KindInternal   Kind = "internal"
	KindConfig     Kind = "config"
	KindValidation Kind = "validation"
	KindRateLimit  Kind = "rate_limit"
	KindUpstream   Kind = "upstream"
	KindNetwork    Kind = "network"
	KindStorage    Kind = "storage"
)

// Error wraps an underlying error with an HTTP status, a kind and a safe message.
type Error struct {
	Err     error
	Status  int
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}

// New creates an internal Error with the provided status.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Kind:    KindInternal,
		Message: message,
	}
}

// Config reports a missing or invalid server-side setting such as a provider key.
func Config(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Kind: KindConfig, Message: message}
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Kind: KindValidation, Message: message}
}

func RateLimited(err error, message string) *Error {
	return &Error{Err: err, Status: http.StatusTooManyRequests, Kind: KindRateLimit, Message: message}
}

func Upstream(err error, message string) *Error {
	return &Error{Err: err, Status: http.StatusInternalServerError, Kind: KindUpstream, Message: message}
}

func Network(err error, message string) *Error {
	return &Error{Err: err, Status: http.StatusInternalServerError, Kind: KindNetwork, Message: message}
}

// Wrap keeps the kind and status of cause while replacing the message.
func Wrap(cause error, message string) *Error {
	var app *Error
	if errors.As(cause, &app) {
		return &Error{Err: cause, Status: app.Status, Kind: app.Kind, Message: message}
	}
	return &Error{Err: cause, Status: StatusOf(cause), Kind: KindInternal, Message: message}
}

// KindOf returns the kind of the first Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var app *Error
	if errors.As(err, &app) && app.Kind != "" {
		return app.Kind
	}
	return KindInternal
}

// StatusOf maps any error to an HTTP status. An explicit status wins; otherwise
// the message is matched against the known failure phrases.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var app *Error
	if errors.As(err, &app) && app.Status != 0 {
		return app.Status
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return http.StatusUnauthorized
	case strings.Contains(msg, "rate limit"):
		return http.StatusTooManyRequests
	case strings.Contains(msg, "invalid model"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
