// Package telemetry instruments Grok calls with Clue logging and
// OpenTelemetry metrics and traces. The client depends only on the small
// interfaces below so tests and embedders can swap the implementations.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/grokrpc/grok-go/runtime/grokerr"
)

// Metric names recorded by RecordCall.
const (
	MetricCalls    = "grok.client.calls"
	MetricDuration = "grok.client.duration"
	MetricTokens   = "grok.client.tokens"
)

type (
	// Logger emits structured log lines. keyvals alternate keys and values.
	Logger interface {
		Debug(ctx context.Context, msg string, keyvals ...any)
		Info(ctx context.Context, msg string, keyvals ...any)
		Warn(ctx context.Context, msg string, keyvals ...any)
		Error(ctx context.Context, msg string, keyvals ...any)
	}

	// Metrics records counters and timers. tags alternate keys and values.
	Metrics interface {
		IncCounter(name string, value float64, tags ...string)
		RecordTimer(name string, duration time.Duration, tags ...string)
	}

	// Tracer starts spans around client operations.
	Tracer interface {
		Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	}

	// Span is an in-flight span.
	Span interface {
		End(opts ...trace.SpanEndOption)
		AddEvent(name string, attrs ...any)
		SetStatus(code codes.Code, description string)
		RecordError(err error, opts ...trace.EventOption)
	}

	// Telemetry bundles the three instruments used by the client.
	Telemetry struct {
		Logger  Logger
		Metrics Metrics
		Tracer  Tracer
	}
)

// Noop returns telemetry that discards everything.
func Noop() Telemetry {
	return Telemetry{Logger: NewNoopLogger(), Metrics: NewNoopMetrics(), Tracer: NewNoopTracer()}
}

// Clue returns telemetry backed by Clue logging and the global OpenTelemetry
// providers.
func Clue() Telemetry {
	return Telemetry{Logger: NewClueLogger(), Metrics: NewClueMetrics(), Tracer: NewClueTracer()}
}

// WithDefaults fills unset instruments with no-op implementations.
func (t Telemetry) WithDefaults() Telemetry {
	if t.Logger == nil {
		t.Logger = NewNoopLogger()
	}
	if t.Metrics == nil {
		t.Metrics = NewNoopMetrics()
	}
	if t.Tracer == nil {
		t.Tracer = NewNoopTracer()
	}
	return t
}

// RecordCall reports the outcome of one client operation: a call counter
// tagged with the outcome kind, a duration timer and, when known, the
// number of tokens billed.
func (t Telemetry) RecordCall(ctx context.Context, span Span, operation string, elapsed time.Duration, tokens int32, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(grokerr.Classify(err).Kind())
	}
	t.Metrics.IncCounter(MetricCalls, 1, "operation", operation, "outcome", outcome)
	t.Metrics.RecordTimer(MetricDuration, elapsed, "operation", operation)
	if tokens > 0 {
		t.Metrics.IncCounter(MetricTokens, float64(tokens), "operation", operation)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if grokerr.IsRetryable(err) {
			t.Logger.Warn(ctx, "grok call failed", "operation", operation, "outcome", outcome, "elapsed", elapsed, "error", err)
		} else {
			t.Logger.Error(ctx, "grok call failed", "operation", operation, "outcome", outcome, "elapsed", elapsed, "error", err)
		}
	} else {
		span.SetStatus(codes.Ok, "")
		t.Logger.Debug(ctx, "grok call", "operation", operation, "elapsed", elapsed, "tokens", tokens)
	}
	span.End()
}
