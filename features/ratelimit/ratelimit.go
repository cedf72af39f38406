// Package ratelimit throttles Grok calls with an adaptive tokens-per-minute
// budget. The limiter wraps a transport.Invoker, so every client operation
// goes through it without the facade knowing.
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"goa.design/pulse/rmap"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/transport"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// DefaultTPM is the budget used when none is configured.
const DefaultTPM = 60000

type (
	// AdaptiveRateLimiter is an AIMD token bucket. It estimates the token
	// cost of each request, blocks callers until capacity is available,
	// halves its budget when the service throttles and recovers additively
	// after successful calls.
	//
	// When built with a Pulse replicated map the budget is shared by every
	// process using the same key.
	AdaptiveRateLimiter struct {
		mu sync.Mutex

		limiter *rate.Limiter

		currentTPM float64
		minTPM     float64
		maxTPM     float64

		recoveryRate float64

		onBackoff func(newTPM float64)
		onProbe   func(newTPM float64)
	}

	limitedInvoker struct {
		next    transport.Invoker
		limiter *AdaptiveRateLimiter
	}

	// clusterMap is the subset of rmap.Map used for coordination.
	clusterMap interface {
		Get(key string) (string, bool)
		SetIfNotExists(ctx context.Context, key, value string) (bool, error)
		TestAndSet(ctx context.Context, key, test, value string) (string, error)
		Subscribe() <-chan rmap.EventKind
	}

	rmapClusterMap struct {
		m *rmap.Map
	}
)

// New returns a limiter with the given budget. When m is not nil and key is
// set the budget is coordinated through m; otherwise the limiter is
// process-local. maxTPM below initialTPM is clamped to initialTPM.
func New(ctx context.Context, m *rmap.Map, key string, initialTPM, maxTPM float64) *AdaptiveRateLimiter {
	var cm clusterMap
	if m != nil {
		cm = &rmapClusterMap{m: m}
	}
	return newClusterLimiter(ctx, cm, key, initialTPM, maxTPM)
}

func newLimiter(initialTPM, maxTPM float64) *AdaptiveRateLimiter {
	if initialTPM <= 0 {
		initialTPM = DefaultTPM
	}
	if maxTPM <= 0 || maxTPM < initialTPM {
		maxTPM = initialTPM
	}
	minTPM := max(initialTPM*0.1, 1)
	recoveryRate := max(initialTPM*0.05, 1)
	return &AdaptiveRateLimiter{
		limiter:      rate.NewLimiter(rate.Limit(initialTPM/60.0), int(initialTPM)),
		currentTPM:   initialTPM,
		minTPM:       minTPM,
		maxTPM:       maxTPM,
		recoveryRate: recoveryRate,
	}
}

// Wrap returns an Invoker that waits for budget before each call and adapts
// the budget to the outcome.
func (l *AdaptiveRateLimiter) Wrap(next transport.Invoker) transport.Invoker {
	if next == nil {
		return nil
	}
	return &limitedInvoker{next: next, limiter: l}
}

// TPM returns the current tokens-per-minute budget.
func (l *AdaptiveRateLimiter) TPM() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentTPM
}

func (c *limitedInvoker) Invoke(ctx context.Context, method string, req, resp any) error {
	if err := c.limiter.wait(ctx, req); err != nil {
		return err
	}
	err := c.next.Invoke(ctx, method, req, resp)
	c.limiter.observe(err)
	return err
}

func (c *limitedInvoker) Stream(ctx context.Context, method string, req any) (transport.Stream, error) {
	if err := c.limiter.wait(ctx, req); err != nil {
		return nil, err
	}
	s, err := c.next.Stream(ctx, method, req)
	c.limiter.observe(err)
	return s, err
}

func (l *AdaptiveRateLimiter) wait(ctx context.Context, req any) error {
	tokens := EstimateTokens(req)
	if tokens == 0 {
		return nil
	}
	l.mu.Lock()
	lim := l.limiter
	if burst := lim.Burst(); burst > 0 && tokens > burst {
		tokens = burst
	}
	l.mu.Unlock()
	if err := lim.WaitN(ctx, tokens); err != nil {
		if ctx.Err() != nil {
			return grokerr.Classify(ctx.Err())
		}
		return grokerr.RateLimit(0).WithOperation("ratelimit")
	}
	return nil
}

func (l *AdaptiveRateLimiter) observe(err error) {
	if err == nil {
		l.probe()
		return
	}
	if grokerr.Classify(err).Kind() == grokerr.KindRateLimit {
		l.backoff()
	}
}

func (l *AdaptiveRateLimiter) backoff() {
	l.mu.Lock()
	newTPM := max(l.currentTPM*0.5, l.minTPM)
	if newTPM == l.currentTPM {
		l.mu.Unlock()
		return
	}
	l.setLocked(newTPM)
	cb := l.onBackoff
	l.mu.Unlock()

	if cb != nil {
		cb(newTPM)
	}
}

func (l *AdaptiveRateLimiter) probe() {
	l.mu.Lock()
	newTPM := min(l.currentTPM+l.recoveryRate, l.maxTPM)
	if newTPM == l.currentTPM {
		l.mu.Unlock()
		return
	}
	l.setLocked(newTPM)
	cb := l.onProbe
	l.mu.Unlock()

	if cb != nil {
		cb(newTPM)
	}
}

// replaceTPM adopts a budget published by another process, clamped to
// [minTPM, maxTPM].
func (l *AdaptiveRateLimiter) replaceTPM(tpm float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tpm = min(max(tpm, l.minTPM), l.maxTPM)
	if tpm == l.currentTPM {
		return
	}
	l.setLocked(tpm)
}

func (l *AdaptiveRateLimiter) setLocked(tpm float64) {
	l.currentTPM = tpm
	l.limiter.SetLimit(rate.Limit(tpm / 60.0))
	l.limiter.SetBurst(int(tpm))
}

// EstimateTokens approximates the token cost of a wire request: one token
// per three characters of prompt text plus the requested completion budget.
// Metadata calls and deferred polls cost nothing.
func EstimateTokens(req any) int {
	chars, completion := 0, 0
	switch r := req.(type) {
	case *wire.GetCompletionsRequest:
		for _, m := range r.Messages {
			for _, c := range m.Content {
				chars += len(c.Text)
			}
			for _, tc := range m.ToolCalls {
				if tc.Function != nil {
					chars += len(tc.Function.Arguments)
				}
			}
		}
		completion = int(deref(r.MaxTokens))
	case *wire.SampleTextRequest:
		for _, p := range r.Prompt {
			chars += len(p)
		}
		completion = int(deref(r.MaxTokens))
	case *wire.EmbedRequest:
		for _, in := range r.Input {
			chars += len(in.String)
		}
	case *wire.TokenizeTextRequest:
		chars = len(r.Text)
	case *wire.GenerateImageRequest:
		chars = len(r.Prompt)
	case *wire.SearchRequest:
		chars = len(r.Query)
	default:
		return 0
	}
	return max(chars/3, 1) + completion
}

func deref(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

func (m *rmapClusterMap) Get(key string) (string, bool) {
	return m.m.Get(key)
}

func (m *rmapClusterMap) SetIfNotExists(ctx context.Context, key, value string) (bool, error) {
	return m.m.SetIfNotExists(ctx, key, value)
}

func (m *rmapClusterMap) TestAndSet(ctx context.Context, key, test, value string) (string, error) {
	return m.m.TestAndSet(ctx, key, test, value)
}

func (m *rmapClusterMap) Subscribe() <-chan rmap.EventKind {
	return m.m.Subscribe()
}

func newClusterLimiter(ctx context.Context, m clusterMap, key string, initialTPM, maxTPM float64) *AdaptiveRateLimiter {
	if key == "" || m == nil {
		return newLimiter(initialTPM, maxTPM)
	}
	if initialTPM <= 0 {
		initialTPM = DefaultTPM
	}

	// Seed the shared budget; a concurrent writer may win, so read it back.
	if _, ok := m.Get(key); !ok {
		if _, err := m.SetIfNotExists(ctx, key, strconv.Itoa(int(initialTPM))); err != nil {
			return newLimiter(initialTPM, maxTPM)
		}
	}
	shared := initialTPM
	if v, ok := readTPM(m, key); ok {
		shared = v
	}

	l := newLimiter(shared, max(maxTPM, initialTPM))
	floor, ceiling, step := l.minTPM, l.maxTPM, l.recoveryRate
	l.onBackoff = func(float64) { go publish(m, key, func(cur float64) float64 { return max(cur*0.5, floor) }) }
	l.onProbe = func(float64) {
		go publish(m, key, func(cur float64) float64 { return min(cur+step, ceiling) })
	}

	ch := m.Subscribe()
	go func() {
		for range ch {
			if v, ok := readTPM(m, key); ok {
				l.replaceTPM(v)
			}
		}
	}()
	return l
}

// publish applies next to the shared budget with compare-and-swap,
// retrying a few times on contention.
func publish(m clusterMap, key string, next func(cur float64) float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for range 3 {
		curStr, ok := m.Get(key)
		if !ok {
			return
		}
		cur, err := strconv.ParseFloat(curStr, 64)
		if err != nil || cur <= 0 {
			return
		}
		nextStr := strconv.Itoa(int(next(cur)))
		if nextStr == curStr {
			return
		}
		prev, err := m.TestAndSet(ctx, key, curStr, nextStr)
		if err != nil || prev == curStr {
			return
		}
	}
}

func readTPM(m clusterMap, key string) (float64, bool) {
	s, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
