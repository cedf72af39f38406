// Package deferred drives the lifecycle of deferred chat completions: the
// caller starts a completion, receives a handle, and polls until the result
// is ready, the deadline passes, or the caller gives up.
//
// Poller is a plain state machine: Next says what to do at a given time and
// Observe feeds back the outcome of a poll. It never sleeps or performs I/O,
// so it can be driven by any scheduler. Wait is the standard driver built on
// a clock.Clock.
package deferred

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
)

// State is the lifecycle state of a Poller.
type State int

const (
	// StateStarted is the state of a new poller before its first Next.
	StateStarted State = iota
	// StatePolling means polls are being scheduled.
	StatePolling
	// StateCompleted means a response was received.
	StateCompleted
	// StateFailed means the service reported a terminal failure or a poll
	// failed with a non-retryable error.
	StateFailed
	// StateTimedOut means the deadline passed before a terminal status.
	StateTimedOut
	// StateCancelled means the caller withdrew.
	StateCancelled
)

type (
	// Action is the next step a driver must take. Variants are ActionWait,
	// ActionPoll and ActionDone.
	Action interface {
		isAction()
	}

	// ActionWait asks the driver to suspend until Until and call Next again.
	ActionWait struct {
		Until time.Time
	}

	// ActionPoll asks the driver to issue one poll and report it with
	// Observe.
	ActionPoll struct{}

	// ActionDone means the poller reached a terminal state; see Result.
	ActionDone struct{}

	// Poller tracks one deferred completion. It is not safe for concurrent
	// use.
	Poller struct {
		handle   model.DeferredHandle
		interval time.Duration
		timeout  time.Duration
		deadline time.Time
		schedule backoff.BackOff

		state    State
		nextPoll time.Time
		inFlight bool
		polls    int

		response *model.ChatResponse
		err      error
		lastErr  error
	}

	// Option configures a Poller.
	Option func(*Poller)
)

// WithJitter randomizes each poll interval by up to fraction of its length
// in either direction. Jitter never moves a poll past the deadline.
func WithJitter(fraction float64) Option {
	return func(p *Poller) {
		if fraction <= 0 {
			return
		}
		if fraction > 1 {
			fraction = 1
		}
		b := &backoff.ExponentialBackOff{
			InitialInterval:     p.interval,
			RandomizationFactor: fraction,
			Multiplier:          1,
			MaxInterval:         p.interval,
			Stop:                backoff.Stop,
			Clock:               backoff.SystemClock,
		}
		b.Reset()
		p.schedule = b
	}
}

// NewPoller returns a poller for handle that polls every interval until
// timeout has elapsed from start.
func NewPoller(handle model.DeferredHandle, interval, timeout time.Duration, start time.Time, opts ...Option) (*Poller, error) {
	if handle.RequestID == "" {
		return nil, grokerr.InvalidRequest("deferred handle has no request id")
	}
	if interval <= 0 {
		return nil, grokerr.InvalidRequestf("poll interval must be positive, got %s", interval)
	}
	if timeout <= 0 {
		return nil, grokerr.InvalidRequestf("poll timeout must be positive, got %s", timeout)
	}
	p := &Poller{
		handle:   handle,
		interval: interval,
		timeout:  timeout,
		deadline: start.Add(timeout),
		schedule: backoff.NewConstantBackOff(interval),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.nextPoll = start.Add(p.nextInterval())
	return p, nil
}

// Handle returns the handle being polled.
func (p *Poller) Handle() model.DeferredHandle { return p.handle }

// State returns the current state.
func (p *Poller) State() State { return p.state }

// Deadline returns the time after which no poll is issued.
func (p *Poller) Deadline() time.Time { return p.deadline }

// Polls returns the number of polls observed so far.
func (p *Poller) Polls() int { return p.polls }

// Terminal reports whether the poller reached a final state.
func (p *Poller) Terminal() bool {
	return p.state >= StateCompleted
}

// Next returns the action to take at now. A poll is never scheduled at or
// after the deadline; once the deadline is reached the poller times out.
func (p *Poller) Next(now time.Time) Action {
	if p.Terminal() {
		return ActionDone{}
	}
	if p.state == StateStarted {
		p.state = StatePolling
	}
	if p.inFlight {
		return ActionPoll{}
	}
	if !now.Before(p.deadline) {
		p.finish(StateTimedOut, nil)
		return ActionDone{}
	}
	if !p.nextPoll.Before(p.deadline) {
		return ActionWait{Until: p.deadline}
	}
	if now.Before(p.nextPoll) {
		return ActionWait{Until: p.nextPoll}
	}
	p.inFlight = true
	return ActionPoll{}
}

// Observe records the outcome of the poll requested by the last ActionPoll.
// Pending results and retryable errors keep the poller polling.
func (p *Poller) Observe(now time.Time, result model.DeferredResult, err error) {
	if p.Terminal() {
		return
	}
	p.inFlight = false
	p.polls++

	if err != nil {
		ce := grokerr.Classify(err)
		switch {
		case ce.Retryable():
			p.lastErr = ce
			p.reschedule(now)
		case ce.Kind() == grokerr.KindCancelled:
			p.finish(StateCancelled, ce)
		case ce.Kind() == grokerr.KindTimedOut:
			p.finish(StateTimedOut, ce)
		default:
			p.finish(StateFailed, ce)
		}
		return
	}

	switch result.Status {
	case model.DeferredStatusPending:
		p.reschedule(now)
	case model.DeferredStatusDone:
		if result.Response == nil {
			p.finish(StateFailed, grokerr.InvalidRequestf("deferred request %s completed without a response", p.handle.RequestID))
			return
		}
		p.response = result.Response
		p.finish(StateCompleted, nil)
	case model.DeferredStatusExpired:
		p.finish(StateFailed, grokerr.InvalidRequestf("deferred request %s expired", p.handle.RequestID))
	default:
		p.finish(StateFailed, grokerr.InvalidRequestf("deferred request %s: unknown status %q", p.handle.RequestID, result.Status))
	}
}

// Cancel stops the poller. It has no effect once the poller is terminal.
func (p *Poller) Cancel() {
	if p.Terminal() {
		return
	}
	p.finish(StateCancelled, nil)
}

// Result returns the response once Completed, or the error describing why
// the poller stopped. It returns an error while the poller is still active.
func (p *Poller) Result() (*model.ChatResponse, error) {
	switch p.state {
	case StateCompleted:
		return p.response, nil
	case StateFailed, StateTimedOut, StateCancelled:
		return nil, p.err
	default:
		return nil, fmt.Errorf("deferred request %s is still %s", p.handle.RequestID, p.state)
	}
}

func (p *Poller) reschedule(now time.Time) {
	p.nextPoll = now.Add(p.nextInterval())
}

func (p *Poller) nextInterval() time.Duration {
	d := p.schedule.NextBackOff()
	if d == backoff.Stop || d <= 0 {
		return p.interval
	}
	return d
}

func (p *Poller) finish(state State, err error) {
	p.state = state
	p.inFlight = false
	op := "GetDeferredCompletion"
	switch state {
	case StateTimedOut:
		if err == nil {
			cause := fmt.Errorf("deferred request %s not ready after %s", p.handle.RequestID, p.timeout)
			if p.lastErr != nil {
				cause = fmt.Errorf("%w: last poll: %w", cause, p.lastErr)
			}
			err = grokerr.TimedOut(cause)
		}
	case StateCancelled:
		if err == nil {
			err = grokerr.Cancelled(fmt.Errorf("deferred request %s cancelled", p.handle.RequestID))
		}
	}
	if ce, ok := grokerr.As(err); ok {
		err = ce.WithOperation(op)
	}
	p.err = err
}

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (ActionWait) isAction() {}
func (ActionPoll) isAction() {}
func (ActionDone) isAction() {}
