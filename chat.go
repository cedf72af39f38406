package grok

import (
	"context"
	"time"

	"github.com/grokrpc/grok-go/runtime/codec"
	"github.com/grokrpc/grok-go/runtime/deferred"
	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/stream"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// Chat sends a blocking chat completion request.
func (c *Client) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	wreq, err := codec.EncodeChatRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodGetCompletion), err)
	}
	var wresp wire.GetChatCompletionResponse
	if err := c.call(ctx, wire.MethodGetCompletion, wreq, &wresp, func() int32 { return totalTokens(wresp.Usage) }); err != nil {
		return nil, err
	}
	resp, err := codec.DecodeChatResponse(&wresp)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodGetCompletion), err)
	}
	return resp, nil
}

// StreamChat starts a streaming chat completion. The caller must Close the
// returned stream; Drain does it automatically.
func (c *Client) StreamChat(ctx context.Context, req *model.ChatRequest) (*stream.ChatStream, error) {
	op := wire.ShortName(wire.MethodGetCompletionChunk)
	wreq, err := codec.EncodeChatRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(op, err)
	}
	src, err := c.open(ctx, wire.MethodGetCompletionChunk, wreq)
	if err != nil {
		return nil, err
	}
	return stream.NewChatStream(ctx, src, op), nil
}

// StartDeferred submits a chat completion for background processing and
// returns the handle to poll it with.
func (c *Client) StartDeferred(ctx context.Context, req *model.ChatRequest) (model.DeferredHandle, error) {
	op := wire.ShortName(wire.MethodStartDeferredCompletion)
	wreq, err := codec.EncodeChatRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return model.DeferredHandle{}, fail(op, err)
	}
	var wresp wire.StartDeferredResponse
	if err := c.call(ctx, wire.MethodStartDeferredCompletion, wreq, &wresp, nil); err != nil {
		return model.DeferredHandle{}, err
	}
	if wresp.RequestID == "" {
		return model.DeferredHandle{}, grokerr.InvalidRequest("service returned an empty request id").WithOperation(op)
	}
	return model.DeferredHandle{RequestID: wresp.RequestID, IssuedAt: c.clock.Now()}, nil
}

// PollDeferred checks a deferred completion once.
func (c *Client) PollDeferred(ctx context.Context, handle model.DeferredHandle) (model.DeferredResult, error) {
	op := wire.ShortName(wire.MethodGetDeferredCompletion)
	if handle.RequestID == "" {
		return model.DeferredResult{}, grokerr.InvalidRequest("deferred handle has no request id").WithOperation(op)
	}
	var wresp wire.GetDeferredCompletionResponse
	if err := c.call(ctx, wire.MethodGetDeferredCompletion, &wire.GetDeferredRequest{RequestID: handle.RequestID}, &wresp, nil); err != nil {
		return model.DeferredResult{}, err
	}
	res, err := codec.DecodeDeferred(&wresp)
	if err != nil {
		return model.DeferredResult{}, fail(op, err)
	}
	return res, nil
}

// WaitForDeferred polls handle every interval until the completion is
// ready, fails, or timeout elapses. Zero interval or timeout use the
// configured defaults. Transient poll failures are retried within the
// deadline. The wait is measured from the call, not from handle.IssuedAt.
func (c *Client) WaitForDeferred(ctx context.Context, handle model.DeferredHandle, interval, timeout time.Duration) (*model.ChatResponse, error) {
	if interval <= 0 {
		interval = c.cfg.Deferred.Interval
	}
	if timeout <= 0 {
		timeout = c.cfg.Deferred.Timeout
	}
	start := c.clock.Now()
	p, err := deferred.NewPoller(handle, interval, timeout, start, deferred.WithJitter(c.cfg.Deferred.Jitter))
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodGetDeferredCompletion), err)
	}
	resp, err := deferred.Wait(ctx, c.clock, p, func(ctx context.Context) (model.DeferredResult, error) {
		return c.PollDeferred(ctx, handle)
	})
	c.tel.Logger.Debug(ctx, "deferred completion finished",
		"request_id", handle.RequestID, "state", p.State().String(), "polls", p.Polls(), "elapsed", c.since(start))
	return resp, err
}

// ChatDeferred starts a deferred completion and waits for it with the
// configured polling defaults.
func (c *Client) ChatDeferred(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	handle, err := c.StartDeferred(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.WaitForDeferred(ctx, handle, 0, 0)
}

// GetStoredCompletion fetches a completion stored with
// ChatRequest.WithStoreMessages.
func (c *Client) GetStoredCompletion(ctx context.Context, responseID string) (*model.ChatResponse, error) {
	op := wire.ShortName(wire.MethodGetStoredCompletion)
	if responseID == "" {
		return nil, grokerr.InvalidRequest("response id is required").WithOperation(op)
	}
	var wresp wire.GetChatCompletionResponse
	if err := c.call(ctx, wire.MethodGetStoredCompletion, &wire.GetStoredCompletionRequest{ResponseID: responseID}, &wresp, nil); err != nil {
		return nil, err
	}
	resp, err := codec.DecodeChatResponse(&wresp)
	if err != nil {
		return nil, fail(op, err)
	}
	return resp, nil
}

// DeleteStoredCompletion deletes a stored completion and returns the id the
// service confirmed.
func (c *Client) DeleteStoredCompletion(ctx context.Context, responseID string) (string, error) {
	if responseID == "" {
		return "", grokerr.InvalidRequest("response id is required").WithOperation(wire.ShortName(wire.MethodDeleteStoredCompletion))
	}
	var wresp wire.DeleteStoredCompletionResponse
	if err := c.call(ctx, wire.MethodDeleteStoredCompletion, &wire.DeleteStoredCompletionRequest{ResponseID: responseID}, &wresp, nil); err != nil {
		return "", err
	}
	return wresp.ResponseID, nil
}

func totalTokens(u *wire.SamplingUsage) int32 {
	if u == nil {
		return 0
	}
	return u.TotalTokens
}
