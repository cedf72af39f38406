// Package retry re-runs Grok calls that failed with a retryable error.
// Whether an error is retryable and how long the service asked the caller to
// wait both come from grokerr; this package only owns the schedule.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/facebookgo/clock"

	"github.com/grokrpc/grok-go/runtime/grokerr"
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts (including the initial attempt).
	// A value of 0 or 1 means no retries.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries. A RateLimit delay advertised
	// by the service is honored even when it exceeds MaxBackoff.
	MaxBackoff time.Duration
	// BackoffMultiplier is the growth factor applied after each retry.
	BackoffMultiplier float64
	// Jitter randomizes each delay by up to this fraction in either direction.
	Jitter float64
	// Clock drives the waits. Defaults to the wall clock.
	Clock clock.Clock
	// OnRetry, when set, is called before each wait with the attempt that
	// just failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ExhaustedError is returned when all attempts failed with retryable errors.
type ExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int
	// TotalDuration is the time spent across attempts and waits.
	TotalDuration time.Duration
	// LastError is the error from the last attempt.
	LastError error
}

// DefaultConfig returns the configuration used by the client when retries
// are enabled.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    250 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
	}
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts over %v: %v", e.Attempts, e.TotalDuration, e.LastError)
}

// Unwrap returns the last attempt's error so errors.Is sees its kind.
func (e *ExhaustedError) Unwrap() error {
	return e.LastError
}

// Do calls fn until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. Non-retryable errors are returned as is. When the
// service advertised a retry delay the wait is at least that long.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	schedule := cfg.schedule(clk)

	start := clk.Now()
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return grokerr.Classify(err)
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		ce := grokerr.Classify(err)
		if !ce.Retryable() {
			return err
		}
		if attempt >= cfg.MaxAttempts {
			break
		}

		wait := schedule.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		if after, ok := grokerr.RetryAfter(ce); ok && after > wait {
			wait = after
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		select {
		case <-ctx.Done():
			return grokerr.Classify(ctx.Err())
		case <-clk.After(wait):
		}
	}

	return &ExhaustedError{
		Attempts:      cfg.MaxAttempts,
		TotalDuration: clk.Now().Sub(start),
		LastError:     lastErr,
	}
}

func (cfg Config) schedule(clk clock.Clock) backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.InitialBackoff,
		RandomizationFactor: cfg.Jitter,
		Multiplier:          cfg.BackoffMultiplier,
		MaxInterval:         cfg.MaxBackoff,
		Stop:                backoff.Stop,
		Clock:               clk,
	}
	if b.InitialInterval <= 0 {
		b.InitialInterval = backoff.DefaultInitialInterval
	}
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.Reset()
	return b
}
