package grokerr

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RetryAfterKey is the trailer key some gateways use to advertise a
// throttling delay in whole seconds.
const RetryAfterKey = "retry-after"

// TrailerCarrier is implemented by transport errors that captured the
// response trailer of the failed call.
type TrailerCarrier interface {
	Trailer() metadata.MD
}

type grpcStatus interface {
	GRPCStatus() *status.Status
}

// Classify maps a raw failure into the error taxonomy. It is a pure
// function of err: the same failure always yields an equal *Error. nil maps
// to nil and errors that are already classified are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}

	var gs grpcStatus
	if errors.As(err, &gs) {
		if s := gs.GRPCStatus(); s != nil {
			return classifyStatus(err, s)
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Cancelled(err)
	case errors.Is(err, context.DeadlineExceeded):
		return TimedOut(err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return Transport(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transport(err)
	}
	return Unknown(err)
}

func classifyStatus(err error, s *status.Status) *Error {
	msg := s.Message()
	switch s.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		e := Auth(msg)
		e.code = s.Code()
		e.cause = err
		return e
	case codes.ResourceExhausted:
		e := RateLimit(retryDelay(err, s))
		e.message = msg
		e.cause = err
		return e
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange,
		codes.NotFound, codes.AlreadyExists, codes.Unimplemented:
		e := InvalidRequest(msg)
		e.code = s.Code()
		e.cause = err
		return e
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		e := Transport(err)
		e.code = s.Code()
		e.message = msg
		return e
	case codes.Internal:
		if isResetMessage(msg) {
			e := Transport(err)
			e.code = s.Code()
			e.message = msg
			return e
		}
	case codes.Canceled:
		e := Cancelled(err)
		e.message = msg
		return e
	}
	e := Unknown(err)
	e.code = s.Code()
	e.message = msg
	return e
}

// retryDelay extracts the throttling delay, preferring the structured
// RetryInfo detail over the retry-after trailer.
func retryDelay(err error, s *status.Status) time.Duration {
	for _, d := range s.Details() {
		if ri, ok := d.(*errdetails.RetryInfo); ok && ri.GetRetryDelay() != nil {
			if delay := ri.GetRetryDelay().AsDuration(); delay > 0 {
				return delay
			}
		}
	}
	var tc TrailerCarrier
	if !errors.As(err, &tc) {
		return 0
	}
	vals := tc.Trailer().Get(RetryAfterKey)
	if len(vals) == 0 {
		return 0
	}
	secs, perr := strconv.Atoi(strings.TrimSpace(vals[0]))
	if perr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func isResetMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "rst_stream") || strings.Contains(m, "connection reset") || strings.Contains(m, "transport is closing")
}
