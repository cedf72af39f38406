package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/grokrpc/grok-go/runtime/grokerr"
)

// stepClock advances on After so Do never blocks in tests.
type stepClock struct {
	*clock.Mock
}

func (c stepClock) After(d time.Duration) <-chan time.Time {
	if d > 0 {
		c.Mock.Add(d)
	}
	ch := make(chan time.Time, 1)
	ch <- c.Mock.Now()
	return ch
}

func testConfig(clk clock.Clock) Config {
	return Config{
		MaxAttempts:       4,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2,
		Clock:             clk,
	}
}

func TestDoSucceedsAfterTransientErrors(t *testing.T) {
	clk := stepClock{clock.NewMock()}
	var waits []time.Duration
	cfg := testConfig(clk)
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { waits = append(waits, d) }

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return status.Error(codes.Unavailable, "down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, waits)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	clk := stepClock{clock.NewMock()}
	calls := 0
	err := Do(context.Background(), testConfig(clk), func(context.Context) error {
		calls++
		return status.Error(codes.InvalidArgument, "bad model")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	var ex *ExhaustedError
	assert.False(t, errors.As(err, &ex))
}

func TestDoExhausts(t *testing.T) {
	clk := stepClock{clock.NewMock()}
	calls := 0
	err := Do(context.Background(), testConfig(clk), func(context.Context) error {
		calls++
		return grokerr.Transport(errors.New("reset"))
	})
	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex))
	assert.Equal(t, 4, ex.Attempts)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, grokerr.ErrTransport)
	assert.Equal(t, 700*time.Millisecond, ex.TotalDuration)
}

func TestDoHonorsRetryAfter(t *testing.T) {
	clk := stepClock{clock.NewMock()}
	var waits []time.Duration
	cfg := testConfig(clk)
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { waits = append(waits, d) }

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls == 1 {
			return grokerr.RateLimit(5 * time.Second)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Second}, waits)
}

func TestDoRetriesRawStatusErrors(t *testing.T) {
	st, err := status.New(codes.ResourceExhausted, "slow down").
		WithDetails(&errdetails.RetryInfo{RetryDelay: durationpb.New(3 * time.Second)})
	require.NoError(t, err)

	cases := []struct {
		name string
		err  error
		wait time.Duration
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), 100 * time.Millisecond},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "slow down"), 100 * time.Millisecond},
		{"retry info", st.Err(), 3 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var waits []time.Duration
			cfg := testConfig(stepClock{clock.NewMock()})
			cfg.OnRetry = func(_ int, _ error, d time.Duration) { waits = append(waits, d) }

			calls := 0
			err := Do(context.Background(), cfg, func(context.Context) error {
				calls++
				if calls == 1 {
					return tc.err
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 2, calls)
			assert.Equal(t, []time.Duration{tc.wait}, waits)
		})
	}
}

func TestDoReturnsOriginalNonRetryableError(t *testing.T) {
	orig := status.Error(codes.PermissionDenied, "denied")
	err := Do(context.Background(), testConfig(stepClock{clock.NewMock()}), func(context.Context) error {
		return orig
	})
	assert.Same(t, orig, err)
}

func TestDoContextCancelled(t *testing.T) {
	clk := stepClock{clock.NewMock()}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, testConfig(clk), func(context.Context) error {
		calls++
		cancel()
		return grokerr.Transport(errors.New("reset"))
	})
	assert.ErrorIs(t, err, grokerr.ErrCancelled)
	assert.Equal(t, 1, calls)
}

func TestDoSingleAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{}, func(context.Context) error {
		calls++
		return grokerr.Transport(errors.New("reset"))
	})
	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex))
	assert.Equal(t, 1, calls)
}

func TestDoAttemptsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("retryable failures use exactly MaxAttempts calls", prop.ForAll(
		func(maxAttempts int) bool {
			cfg := testConfig(stepClock{clock.NewMock()})
			cfg.MaxAttempts = maxAttempts
			calls := 0
			_ = Do(context.Background(), cfg, func(context.Context) error {
				calls++
				return grokerr.RateLimit(0)
			})
			return calls == maxAttempts
		},
		gen.IntRange(1, 10),
	))

	properties.Property("non-retryable failures use one call", prop.ForAll(
		func(maxAttempts int, msg string) bool {
			cfg := testConfig(stepClock{clock.NewMock()})
			cfg.MaxAttempts = maxAttempts
			calls := 0
			_ = Do(context.Background(), cfg, func(context.Context) error {
				calls++
				return grokerr.InvalidRequest(msg)
			})
			return calls == 1
		},
		gen.IntRange(1, 10),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
