package deferred

import (
	"context"

	"github.com/facebookgo/clock"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
)

// PollFunc issues one deferred poll.
type PollFunc func(ctx context.Context) (model.DeferredResult, error)

// Wait drives p to a terminal state using clk for time and poll for I/O.
// Context cancellation moves the poller to Cancelled and stops further
// polls. It returns the completed response or the poller's terminal error.
func Wait(ctx context.Context, clk clock.Clock, p *Poller, poll PollFunc) (*model.ChatResponse, error) {
	for {
		switch a := p.Next(clk.Now()).(type) {
		case ActionDone:
			return p.Result()
		case ActionWait:
			select {
			case <-ctx.Done():
				return cancelled(ctx, p)
			case <-clk.After(a.Until.Sub(clk.Now())):
			}
		case ActionPoll:
			if ctx.Err() != nil {
				return cancelled(ctx, p)
			}
			res, err := poll(ctx)
			if ctx.Err() != nil {
				return cancelled(ctx, p)
			}
			p.Observe(clk.Now(), res, err)
		}
	}
}

// cancelled stops p after ctx ended. A context deadline counts as a timeout.
func cancelled(ctx context.Context, p *Poller) (*model.ChatResponse, error) {
	ce := grokerr.Classify(ctx.Err())
	if ce.Kind() == grokerr.KindTimedOut {
		p.finish(StateTimedOut, ce)
	} else {
		p.finish(StateCancelled, grokerr.Cancelled(ctx.Err()))
	}
	return p.Result()
}
