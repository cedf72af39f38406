// Package grok is a typed client for the xAI Grok API.
//
// A Client sequences the wire adapter, the RPC transport, the stream
// aggregator and the error classifier for each operation. Requests are
// validated before any network I/O, and every error returned by a Client is
// a *grokerr.Error.
//
// # Wire format
//
// Messages are the hand-written structs of package wire, carried over gRPC
// with the "json" content subtype (see codec.JSONCodec). The peer must
// accept application/grpc+json. Endpoints that only serve binary protobuf,
// such as the public api.x.ai service, reject these calls; reach them
// through a JSON-capable gateway, or replace packages wire and codec with
// generated protobuf stubs.
//
//	client, err := grok.NewFromEnv(ctx)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	resp, err := client.Chat(ctx, model.NewChatRequest().UserMessage("Hello"))
package grok

import (
	"context"
	"io"
	"time"

	"github.com/facebookgo/clock"
	"go.opentelemetry.io/otel/trace"
	"goa.design/pulse/rmap"
	"google.golang.org/grpc"

	"github.com/grokrpc/grok-go/features/ratelimit"
	"github.com/grokrpc/grok-go/runtime/config"
	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/telemetry"
	"github.com/grokrpc/grok-go/runtime/transport"
	"github.com/grokrpc/grok-go/runtime/wire"
)

type (
	// Client issues Grok API calls. It is safe for concurrent use.
	Client struct {
		inv     transport.Invoker
		closer  io.Closer
		cfg     config.Config
		tel     telemetry.Telemetry
		clock   clock.Clock
		limiter *ratelimit.AdaptiveRateLimiter
		rmap    *rmap.Map
	}

	// Option customizes a Client.
	Option func(*Client)
)

// WithTelemetry sets the logger, metrics and tracer. Unset instruments are
// no-ops. Clients default to telemetry.Clue().
func WithTelemetry(t telemetry.Telemetry) Option {
	return func(c *Client) { c.tel = t }
}

// WithClock sets the clock used for deferred polling and call timing.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithRateLimitMap shares the rate limit budget through a Pulse replicated
// map. It has no effect unless the configuration enables rate limiting.
func WithRateLimitMap(m *rmap.Map) Option {
	return func(c *Client) { c.rmap = m }
}

// New dials the endpoint in cfg and returns a Client. The connection is
// established lazily; use TestConnection to check credentials up front.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := transport.Dial(ctx, cfg.TransportOptions())
	if err != nil {
		return nil, err
	}
	c := newClient(ctx, g, cfg, opts)
	c.closer = g
	return c, nil
}

// NewFromEnv builds the configuration with config.FromEnv and calls New.
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, opts...)
}

// NewWithConn returns a Client over an existing connection. The caller
// keeps ownership of conn. The key is attached to every call and is only
// sent over connections with transport security.
func NewWithConn(conn *grpc.ClientConn, key model.APIKey, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, grokerr.InvalidRequest("connection is required")
	}
	if key.IsZero() {
		return nil, grokerr.Auth("api key is required")
	}
	cfg := config.Default()
	cfg.APIKey = key
	g := transport.NewGRPC(conn, cfg.Timeout, grpc.PerRPCCredentials(transport.Bearer(key, false)))
	return newClient(context.Background(), g, cfg, opts), nil
}

// NewWithInvoker returns a Client issuing calls through inv. It is meant
// for tests and for callers that add their own transport middleware. The
// API key in cfg is not required.
func NewWithInvoker(inv transport.Invoker, cfg config.Config, opts ...Option) (*Client, error) {
	if inv == nil {
		return nil, grokerr.InvalidRequest("invoker is required")
	}
	return newClient(context.Background(), inv, cfg, opts), nil
}

func newClient(ctx context.Context, inv transport.Invoker, cfg config.Config, opts []Option) *Client {
	c := &Client{inv: inv, cfg: cfg, tel: telemetry.Clue(), clock: clock.New()}
	for _, opt := range opts {
		opt(c)
	}
	c.tel = c.tel.WithDefaults()
	if c.cfg.Deferred.Interval <= 0 {
		c.cfg.Deferred.Interval = config.DefaultDeferredInterval
	}
	if c.cfg.Deferred.Timeout <= 0 {
		c.cfg.Deferred.Timeout = config.DefaultDeferredTimeout
	}
	if rl := cfg.RateLimit; rl.InitialTPM > 0 {
		c.limiter = ratelimit.New(ctx, c.rmap, rl.Key, rl.InitialTPM, rl.MaxTPM)
		c.inv = c.limiter.Wrap(c.inv)
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() config.Config { return c.cfg }

// RateLimiter returns the adaptive limiter, or nil when disabled.
func (c *Client) RateLimiter() *ratelimit.AdaptiveRateLimiter { return c.limiter }

// Close releases the connection when the client created it.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// TestConnection checks connectivity and credentials by fetching the API
// key metadata.
func (c *Client) TestConnection(ctx context.Context) error {
	info, err := c.GetAPIKeyInfo(ctx)
	if err != nil {
		return err
	}
	if !info.IsActive() {
		return grokerr.Auth("api key is " + info.Status()).WithOperation(wire.ShortName(wire.MethodGetAPIKeyInfo))
	}
	return nil
}

// call performs one unary RPC with tracing, metrics and classification.
// tokens, when not nil, reports billed tokens after a successful call.
func (c *Client) call(ctx context.Context, method string, req, resp any, tokens func() int32) error {
	op := wire.ShortName(method)
	ctx, span := c.tel.Tracer.Start(ctx, "grok."+op, trace.WithSpanKind(trace.SpanKindClient))
	start := c.clock.Now()
	err := c.inv.Invoke(ctx, method, req, resp)
	var n int32
	if err != nil {
		err = fail(op, err)
	} else if tokens != nil {
		n = tokens()
	}
	c.tel.RecordCall(ctx, span, op, c.since(start), n, err)
	return err
}

// open starts a server-streaming RPC. Only the open is traced; the stream
// reports its own errors.
func (c *Client) open(ctx context.Context, method string, req any) (transport.Stream, error) {
	op := wire.ShortName(method)
	ctx, span := c.tel.Tracer.Start(ctx, "grok."+op+".open", trace.WithSpanKind(trace.SpanKindClient))
	start := c.clock.Now()
	s, err := c.inv.Stream(ctx, method, req)
	if err != nil {
		err = fail(op, err)
	}
	c.tel.RecordCall(ctx, span, op, c.since(start), 0, err)
	return s, err
}

// fail classifies err and tags it with op.
func fail(op string, err error) error {
	return grokerr.Classify(err).WithOperation(op)
}

func (c *Client) since(start time.Time) time.Duration {
	return c.clock.Now().Sub(start)
}
