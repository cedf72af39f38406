// Package grokerr defines the closed error taxonomy returned by the Grok
// client and the retry-eligibility policy over it. Every caller-facing
// failure is an *Error carrying one Kind; Classify maps raw transport
// failures into that taxonomy.
package grokerr

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
)

// Kind classifies client failures into the categories callers branch on for
// retry and UX decisions.
type Kind string

const (
	// KindAuth indicates authentication or permission failures. Retrying
	// without new credentials cannot succeed.
	KindAuth Kind = "auth"

	// KindRateLimit indicates the service is throttling requests. RetryAfter
	// reports the delay requested by the service when it supplied one.
	KindRateLimit Kind = "rate_limit"

	// KindInvalidRequest indicates the request is malformed or was rejected
	// during validation.
	KindInvalidRequest Kind = "invalid_request"

	// KindTransport indicates a transient transport failure (connection
	// reset, service unavailable, transport deadline).
	KindTransport Kind = "transport"

	// KindTimedOut indicates a caller-imposed time budget elapsed.
	KindTimedOut Kind = "timed_out"

	// KindCancelled indicates the caller withdrew interest.
	KindCancelled Kind = "cancelled"

	// KindUnknown indicates an unclassified failure.
	KindUnknown Kind = "unknown"
)

// Error is the single error type surfaced by the client. Fields are private
// so values stay immutable once classified.
type Error struct {
	kind       Kind
	operation  string
	code       codes.Code
	message    string
	retryAfter time.Duration
	cause      error
}

// Sentinels usable with errors.Is to match on kind alone.
var (
	ErrAuth           = &Error{kind: KindAuth}
	ErrRateLimit      = &Error{kind: KindRateLimit}
	ErrInvalidRequest = &Error{kind: KindInvalidRequest}
	ErrTransport      = &Error{kind: KindTransport}
	ErrTimedOut       = &Error{kind: KindTimedOut}
	ErrCancelled      = &Error{kind: KindCancelled}
	ErrUnknown        = &Error{kind: KindUnknown}
)

// Auth returns an authentication failure with the given message.
func Auth(message string) *Error {
	return &Error{kind: KindAuth, code: codes.Unauthenticated, message: message}
}

// RateLimit returns a throttling failure. retryAfter is zero when the service
// did not say how long to wait.
func RateLimit(retryAfter time.Duration) *Error {
	return &Error{kind: KindRateLimit, code: codes.ResourceExhausted, retryAfter: retryAfter}
}

// InvalidRequest returns a malformed-request failure.
func InvalidRequest(message string) *Error {
	return &Error{kind: KindInvalidRequest, code: codes.InvalidArgument, message: message}
}

// InvalidRequestf formats its arguments into an InvalidRequest error.
func InvalidRequestf(format string, args ...any) *Error {
	return InvalidRequest(fmt.Sprintf(format, args...))
}

// Transport returns a transient transport failure wrapping cause.
func Transport(cause error) *Error {
	return &Error{kind: KindTransport, code: codes.Unavailable, cause: cause}
}

// TimedOut returns a deadline failure. cause may be nil.
func TimedOut(cause error) *Error {
	return &Error{kind: KindTimedOut, code: codes.DeadlineExceeded, cause: cause}
}

// Cancelled returns a cancellation failure. cause may be nil.
func Cancelled(cause error) *Error {
	return &Error{kind: KindCancelled, code: codes.Canceled, cause: cause}
}

// Unknown returns an unclassified failure wrapping cause.
func Unknown(cause error) *Error {
	return &Error{kind: KindUnknown, code: codes.Unknown, cause: cause}
}

// WithOperation returns a copy of e annotated with the RPC or client
// operation that failed.
func (e *Error) WithOperation(op string) *Error {
	cp := *e
	cp.operation = op
	return &cp
}

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Operation returns the failing operation name when known.
func (e *Error) Operation() string { return e.operation }

// Code returns the gRPC status code associated with the failure.
func (e *Error) Code() codes.Code { return e.code }

// Message returns the failure message when available.
func (e *Error) Message() string { return e.message }

// RetryAfter returns the service-requested delay for RateLimit errors.
func (e *Error) RetryAfter() time.Duration { return e.retryAfter }

// Retryable reports whether retrying the same call may succeed.
func (e *Error) Retryable() bool { return IsRetryable(e) }

func (e *Error) Error() string {
	op := e.operation
	if op == "" {
		op = "request"
	}
	msg := e.message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	switch {
	case e.kind == KindRateLimit && e.retryAfter > 0:
		if msg != "" {
			msg += ", "
		}
		msg += fmt.Sprintf("retry after %s", e.retryAfter)
	case msg == "":
		msg = string(e.kind)
	}
	return fmt.Sprintf("grok %s (%s): %s", e.kind, op, msg)
}

// Unwrap returns the underlying cause to preserve the original error chain.
func (e *Error) Unwrap() error { return e.cause }

// Is matches sentinel errors by kind so errors.Is(err, ErrRateLimit) works
// for any rate limit error regardless of its details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.message != "" || t.cause != nil || t.operation != "" {
		return false
	}
	return t.kind == e.kind
}

// IsRetryable reports whether err classifies as a kind that may succeed when
// retried unchanged. Only RateLimit and Transport are retryable.
func IsRetryable(err error) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	switch e.kind {
	case KindRateLimit, KindTransport:
		return true
	default:
		return false
	}
}

// RetryAfter returns the delay requested by the service for rate limit
// errors, and false for any other error.
func RetryAfter(err error) (time.Duration, bool) {
	e, ok := As(err)
	if !ok || e.kind != KindRateLimit {
		return 0, false
	}
	return e.retryAfter, true
}

// As returns the first *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}
