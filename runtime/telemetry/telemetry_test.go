package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
)

type (
	recordedMetric struct {
		name  string
		value float64
		tags  []string
	}

	recordingMetrics struct {
		counters []recordedMetric
		timers   []recordedMetric
	}

	recordingLogger struct {
		levels []string
	}

	recordingSpan struct {
		ended  bool
		code   codes.Code
		errors []error
	}
)

func (m *recordingMetrics) IncCounter(name string, value float64, tags ...string) {
	m.counters = append(m.counters, recordedMetric{name, value, tags})
}

func (m *recordingMetrics) RecordTimer(name string, d time.Duration, tags ...string) {
	m.timers = append(m.timers, recordedMetric{name, d.Seconds(), tags})
}

func (l *recordingLogger) Debug(context.Context, string, ...any) { l.levels = append(l.levels, "debug") }
func (l *recordingLogger) Info(context.Context, string, ...any)  { l.levels = append(l.levels, "info") }
func (l *recordingLogger) Warn(context.Context, string, ...any)  { l.levels = append(l.levels, "warn") }
func (l *recordingLogger) Error(context.Context, string, ...any) { l.levels = append(l.levels, "error") }

func (s *recordingSpan) End(...trace.SpanEndOption)       { s.ended = true }
func (s *recordingSpan) AddEvent(string, ...any)          {}
func (s *recordingSpan) SetStatus(c codes.Code, _ string) { s.code = c }
func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errors = append(s.errors, err)
}

func TestRecordCallSuccess(t *testing.T) {
	m := &recordingMetrics{}
	l := &recordingLogger{}
	span := &recordingSpan{}
	tel := Telemetry{Logger: l, Metrics: m}.WithDefaults()

	tel.RecordCall(context.Background(), span, "GetCompletion", 2*time.Second, 42, nil)

	require.Len(t, m.counters, 2)
	assert.Equal(t, recordedMetric{MetricCalls, 1, []string{"operation", "GetCompletion", "outcome", "ok"}}, m.counters[0])
	assert.Equal(t, recordedMetric{MetricTokens, 42, []string{"operation", "GetCompletion"}}, m.counters[1])
	require.Len(t, m.timers, 1)
	assert.InDelta(t, 2.0, m.timers[0].value, 1e-9)
	assert.Equal(t, []string{"debug"}, l.levels)
	assert.True(t, span.ended)
	assert.Equal(t, codes.Ok, span.code)
}

func TestRecordCallFailure(t *testing.T) {
	cases := []struct {
		err     error
		outcome string
		level   string
	}{
		{grokerr.RateLimit(time.Second), "rate_limit", "warn"},
		{grokerr.Auth("bad key"), "auth", "error"},
		{errors.New("boom"), "unknown", "error"},
	}
	for _, tc := range cases {
		t.Run(tc.outcome, func(t *testing.T) {
			m := &recordingMetrics{}
			l := &recordingLogger{}
			span := &recordingSpan{}
			tel := Telemetry{Logger: l, Metrics: m, Tracer: NewNoopTracer()}

			tel.RecordCall(context.Background(), span, "Embed", time.Millisecond, 0, tc.err)

			require.Len(t, m.counters, 1)
			assert.Equal(t, []string{"operation", "Embed", "outcome", tc.outcome}, m.counters[0].tags)
			assert.Equal(t, []string{tc.level}, l.levels)
			assert.Equal(t, codes.Error, span.code)
			assert.Equal(t, []error{tc.err}, span.errors)
			assert.True(t, span.ended)
		})
	}
}

func TestClueLoggerRedactsKey(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.Context(context.Background(), log.WithOutput(&buf), log.WithFormat(log.FormatJSON), log.WithDebug())
	key := model.NewAPIKey("xai-super-secret")

	logger := NewClueLogger()
	logger.Info(ctx, "dialing", "endpoint", "api.x.ai", "key", key)
	logger.Error(ctx, "failed", "error", errors.New("boom"), "key", key)

	out := buf.String()
	assert.Contains(t, out, "dialing")
	assert.Contains(t, out, "api.x.ai")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "xai-super-secret")
}

func TestAttributeConversion(t *testing.T) {
	attrs := kvAttrs([]any{"model", "grok-4", "n", 3, "tokens", int32(7), "ok", true, "key", model.NewAPIKey("secret"), "dangling"})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("model", "grok-4"),
		attribute.Int("n", 3),
		attribute.Int64("tokens", 7),
		attribute.Bool("ok", true),
		attribute.String("key", "[REDACTED]"),
		attribute.String("dangling", ""),
	}, attrs)

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("operation", "Embed"),
		attribute.String("odd", ""),
	}, tagAttrs([]string{"operation", "Embed", "odd"}))
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	tel := Noop()
	newCtx, span := tel.Tracer.Start(ctx, "op")
	assert.Equal(t, ctx, newCtx)
	tel.RecordCall(newCtx, span, "op", time.Second, 1, errors.New("x"))
	tel.Logger.Info(ctx, "msg", "k", "v")
}
