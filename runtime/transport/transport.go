// Package transport executes Grok RPCs. Invoker is the narrow contract the
// client depends on; GRPC implements it over a *grpc.ClientConn with bearer
// authentication, per-call timeouts, request IDs and trailer capture for
// error classification.
package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/grokrpc/grok-go/runtime/codec"
)

// RequestIDKey is the metadata key carrying the client generated request
// ID.
const RequestIDKey = "x-request-id"

type (
	// Invoker issues RPCs. Invoke performs a unary call, decoding the reply
	// into resp. Stream opens a server-streaming call after sending req.
	Invoker interface {
		Invoke(ctx context.Context, method string, req, resp any) error
		Stream(ctx context.Context, method string, req any) (Stream, error)
	}

	// Stream is an open server stream. RecvMsg returns io.EOF once the server
	// is done. Close releases the stream and is safe to call more than once.
	Stream interface {
		RecvMsg(m any) error
		Close() error
	}

	// GRPC is an Invoker backed by a gRPC client connection.
	GRPC struct {
		conn     *grpc.ClientConn
		owned    bool
		timeout  time.Duration
		callOpts []grpc.CallOption
	}

	// CallError is returned by GRPC when an RPC fails. It exposes the gRPC
	// status and the response trailer for classification.
	CallError struct {
		Method  string
		err     error
		trailer metadata.MD
	}

	grpcStream struct {
		cs     grpc.ClientStream
		cancel context.CancelFunc
		method string
		once   sync.Once
	}
)

// NewGRPC wraps an existing connection. The caller keeps ownership of conn;
// Close does not close it. timeout bounds unary calls when positive. opts
// are added to every call, typically grpc.PerRPCCredentials(Bearer(...)).
func NewGRPC(conn *grpc.ClientConn, timeout time.Duration, opts ...grpc.CallOption) *GRPC {
	return &GRPC{conn: conn, timeout: timeout, callOpts: opts}
}

// Conn returns the underlying connection.
func (g *GRPC) Conn() *grpc.ClientConn { return g.conn }

// Close closes the connection when it was created by Dial.
func (g *GRPC) Close() error {
	if !g.owned || g.conn == nil {
		return nil
	}
	return g.conn.Close()
}

// Invoke implements Invoker.
func (g *GRPC) Invoke(ctx context.Context, method string, req, resp any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	ctx = withRequestID(ctx)
	var trailer metadata.MD
	opts := append([]grpc.CallOption{grpc.ForceCodec(codec.JSONCodec{}), grpc.Trailer(&trailer)}, g.callOpts...)
	err := g.conn.Invoke(ctx, method, req, resp, opts...)
	if err != nil {
		return &CallError{Method: method, err: err, trailer: trailer}
	}
	return nil
}

// Stream implements Invoker. The per-call timeout does not apply to
// streams; callers bound them through ctx.
func (g *GRPC) Stream(ctx context.Context, method string, req any) (Stream, error) {
	ctx, cancel := context.WithCancel(withRequestID(ctx))
	desc := &grpc.StreamDesc{StreamName: method, ServerStreams: true}
	opts := append([]grpc.CallOption{grpc.ForceCodec(codec.JSONCodec{})}, g.callOpts...)
	cs, err := g.conn.NewStream(ctx, desc, method, opts...)
	if err != nil {
		cancel()
		return nil, &CallError{Method: method, err: err}
	}
	if err := cs.SendMsg(req); err != nil {
		cancel()
		if errors.Is(err, io.EOF) {
			// The real status is reported by RecvMsg.
			err = cs.RecvMsg(new(struct{}))
		}
		return nil, &CallError{Method: method, err: err, trailer: cs.Trailer()}
	}
	if err := cs.CloseSend(); err != nil {
		cancel()
		return nil, &CallError{Method: method, err: err}
	}
	return &grpcStream{cs: cs, cancel: cancel, method: method}, nil
}

func (s *grpcStream) RecvMsg(m any) error {
	err := s.cs.RecvMsg(m)
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return &CallError{Method: s.method, err: err, trailer: s.cs.Trailer()}
}

func (s *grpcStream) Close() error {
	s.once.Do(s.cancel)
	return nil
}

func withRequestID(ctx context.Context) context.Context {
	if md, ok := metadata.FromOutgoingContext(ctx); ok && len(md.Get(RequestIDKey)) > 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, RequestIDKey, uuid.NewString())
}

// Error implements error.
func (e *CallError) Error() string {
	return e.Method + ": " + e.err.Error()
}

// Unwrap returns the underlying gRPC error.
func (e *CallError) Unwrap() error { return e.err }

// GRPCStatus returns the status of the failed call.
func (e *CallError) GRPCStatus() *status.Status {
	s, _ := status.FromError(e.err)
	return s
}

// Trailer returns the response trailer, possibly empty.
func (e *CallError) Trailer() metadata.MD { return e.trailer }
