package deferred

import (
	"context"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
)

const unit = time.Second

// stepClock advances the mock clock synchronously on After so Wait can be
// driven from a single goroutine.
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

func newStepClock() stepClock {
	return stepClock{Mock: clock.NewMock()}
}

var handle = model.DeferredHandle{RequestID: "req-1"}

// scriptedPoll returns results in order and records when each poll happened.
type scriptedPoll struct {
	clk     clock.Clock
	results []model.DeferredResult
	errs    []error
	at      []time.Duration
	start   time.Time
}

func (s *scriptedPoll) poll(context.Context) (model.DeferredResult, error) {
	i := len(s.at)
	s.at = append(s.at, s.clk.Now().Sub(s.start))
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if i < len(s.results) {
		return s.results[i], err
	}
	return model.DeferredResult{Status: model.DeferredStatusPending}, err
}

func pending() model.DeferredResult {
	return model.DeferredResult{Status: model.DeferredStatusPending}
}

func done(content string) model.DeferredResult {
	return model.DeferredResult{
		Status:   model.DeferredStatusDone,
		Response: &model.ChatResponse{Content: content, FinishReason: model.FinishReasonStop},
	}
}

func TestWaitTimesOut(t *testing.T) {
	clk := newStepClock()
	start := clk.Now()
	p, err := NewPoller(handle, 2*unit, 5*unit, start)
	require.NoError(t, err)

	script := &scriptedPoll{clk: clk, start: start}
	resp, err := Wait(context.Background(), clk, p, script.poll)

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, grokerr.ErrTimedOut)
	assert.Equal(t, StateTimedOut, p.State())
	assert.Equal(t, []time.Duration{2 * unit, 4 * unit}, script.at)
	assert.False(t, clk.Now().Before(start.Add(5*unit)))

	// No further polls once terminal.
	assert.Equal(t, ActionDone{}, p.Next(clk.Now().Add(10*unit)))
	assert.Equal(t, 2, p.Polls())
}

func TestWaitCompletesOnSecondPoll(t *testing.T) {
	clk := newStepClock()
	start := clk.Now()
	p, err := NewPoller(handle, 2*unit, 5*unit, start)
	require.NoError(t, err)

	script := &scriptedPoll{clk: clk, start: start, results: []model.DeferredResult{pending(), done("ready")}}
	resp, err := Wait(context.Background(), clk, p, script.poll)

	require.NoError(t, err)
	assert.Equal(t, "ready", resp.Content)
	assert.Equal(t, StateCompleted, p.State())
	assert.Equal(t, []time.Duration{2 * unit, 4 * unit}, script.at)
	assert.True(t, clk.Now().Before(p.Deadline()))
}

func TestWaitRetriesTransientErrors(t *testing.T) {
	clk := newStepClock()
	start := clk.Now()
	p, err := NewPoller(handle, unit, 10*unit, start)
	require.NoError(t, err)

	script := &scriptedPoll{
		clk:     clk,
		start:   start,
		results: []model.DeferredResult{{}, {}, done("ok")},
		errs: []error{
			status.Error(codes.Unavailable, "try again"),
			status.Error(codes.ResourceExhausted, "slow down"),
		},
	}
	resp, err := Wait(context.Background(), clk, p, script.poll)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Len(t, script.at, 3)
}

func TestWaitFailsOnTerminalErrors(t *testing.T) {
	cases := []struct {
		name   string
		result model.DeferredResult
		err    error
		kind   error
	}{
		{"auth", model.DeferredResult{}, status.Error(codes.Unauthenticated, "bad key"), grokerr.ErrAuth},
		{"expired", model.DeferredResult{Status: model.DeferredStatusExpired}, nil, grokerr.ErrInvalidRequest},
		{"done without response", model.DeferredResult{Status: model.DeferredStatusDone}, nil, grokerr.ErrInvalidRequest},
		{"unknown status", model.DeferredResult{Status: model.DeferredStatusUnknown}, nil, grokerr.ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := newStepClock()
			p, err := NewPoller(handle, unit, 10*unit, clk.Now())
			require.NoError(t, err)

			script := &scriptedPoll{clk: clk, start: clk.Now(), results: []model.DeferredResult{tc.result}, errs: []error{tc.err}}
			_, err = Wait(context.Background(), clk, p, script.poll)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, StateFailed, p.State())
			assert.Len(t, script.at, 1)
		})
	}
}

func TestWaitCancellation(t *testing.T) {
	clk := newStepClock()
	p, err := NewPoller(handle, unit, 10*unit, clk.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	_, err = Wait(ctx, clk, p, func(context.Context) (model.DeferredResult, error) {
		polls++
		cancel()
		return pending(), nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, grokerr.ErrCancelled)
	assert.Equal(t, StateCancelled, p.State())
	assert.Equal(t, 1, polls)
}

func TestWaitContextAlreadyDone(t *testing.T) {
	clk := newStepClock()
	p, err := NewPoller(handle, unit, 10*unit, clk.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Wait(ctx, clk, p, func(context.Context) (model.DeferredResult, error) {
		t.Fatal("poll after cancellation")
		return model.DeferredResult{}, nil
	})
	assert.ErrorIs(t, err, grokerr.ErrCancelled)
}

func TestPollerStateMachine(t *testing.T) {
	start := time.Unix(0, 0)
	p, err := NewPoller(handle, 2*unit, 5*unit, start)
	require.NoError(t, err)
	assert.Equal(t, StateStarted, p.State())

	assert.Equal(t, ActionWait{Until: start.Add(2 * unit)}, p.Next(start))
	assert.Equal(t, StatePolling, p.State())
	assert.Equal(t, ActionPoll{}, p.Next(start.Add(2*unit)))
	p.Observe(start.Add(2*unit), pending(), nil)

	assert.Equal(t, ActionPoll{}, p.Next(start.Add(4*unit)))
	p.Observe(start.Add(4*unit), pending(), nil)

	// The next poll would land at 6, past the deadline: wait for the deadline.
	assert.Equal(t, ActionWait{Until: start.Add(5 * unit)}, p.Next(start.Add(4*unit)))
	assert.Equal(t, ActionDone{}, p.Next(start.Add(5*unit)))
	assert.Equal(t, StateTimedOut, p.State())

	// Observations after the terminal state are ignored.
	p.Observe(start.Add(6*unit), done("late"), nil)
	_, err = p.Result()
	assert.ErrorIs(t, err, grokerr.ErrTimedOut)
}

func TestPollerCancel(t *testing.T) {
	p, err := NewPoller(handle, unit, 5*unit, time.Unix(0, 0))
	require.NoError(t, err)
	p.Cancel()
	assert.Equal(t, StateCancelled, p.State())
	assert.Equal(t, ActionDone{}, p.Next(time.Unix(1, 0)))
	_, err = p.Result()
	assert.ErrorIs(t, err, grokerr.ErrCancelled)
}

func TestPollerJitterRespectsDeadline(t *testing.T) {
	for range 50 {
		clk := newStepClock()
		start := clk.Now()
		p, err := NewPoller(handle, 2*unit, 5*unit, start, WithJitter(0.9))
		require.NoError(t, err)

		script := &scriptedPoll{clk: clk, start: start}
		_, err = Wait(context.Background(), clk, p, script.poll)
		assert.ErrorIs(t, err, grokerr.ErrTimedOut)
		for _, at := range script.at {
			assert.Less(t, at, 5*unit)
		}
	}
}

func TestNewPollerValidation(t *testing.T) {
	_, err := NewPoller(model.DeferredHandle{}, unit, unit, time.Now())
	assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	_, err = NewPoller(handle, 0, unit, time.Now())
	assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	_, err = NewPoller(handle, unit, 0, time.Now())
	assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
}
