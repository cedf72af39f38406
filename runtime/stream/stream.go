package stream

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/grokrpc/grok-go/runtime/codec"
	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/wire"
)

type (
	// Receiver is the server side of a streaming RPC. RecvMsg returns io.EOF
	// once the server has finished sending. Close releases the stream and
	// unblocks a pending RecvMsg.
	Receiver interface {
		RecvMsg(m any) error
		Close() error
	}

	// ChatStream yields the chunks of a streaming chat completion while
	// aggregating them into a response.
	ChatStream struct {
		*pump[model.ChatChunk]

		mu  sync.Mutex
		agg Aggregator
	}

	// SampleStream yields the partial results of a streaming sample call.
	SampleStream struct {
		*pump[*model.SampleResponse]
	}

	// pump moves items read from a Receiver onto a channel in a dedicated
	// goroutine so Recv can honor context cancellation while the transport
	// blocks.
	pump[T any] struct {
		ctx       context.Context
		cancel    context.CancelFunc
		src       Receiver
		operation string
		items     chan T

		errMu    sync.Mutex
		errSet   bool
		finalErr error

		closeOnce sync.Once
		closeErr  error
	}
)

// NewChatStream starts consuming src. operation names the RPC in classified
// errors. The stream must be closed by the caller.
func NewChatStream(ctx context.Context, src Receiver, operation string) *ChatStream {
	s := &ChatStream{}
	s.pump = newPump(ctx, src, operation, func() (model.ChatChunk, error) {
		var msg wire.GetChatCompletionChunk
		if err := src.RecvMsg(&msg); err != nil {
			return model.ChatChunk{}, err
		}
		return codec.DecodeChatChunk(&msg), nil
	})
	return s
}

// Recv returns the next chunk and folds it into the aggregated response.
// It returns io.EOF when the stream completed normally.
func (s *ChatStream) Recv() (model.ChatChunk, error) {
	chunk, err := s.pump.Recv()
	if err != nil {
		return chunk, err
	}
	s.mu.Lock()
	s.agg.Add(chunk)
	s.mu.Unlock()
	return chunk, nil
}

// Response returns the response aggregated from the chunks returned by Recv
// so far. After Recv returns io.EOF it is the complete response.
func (s *ChatStream) Response() *model.ChatResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Response()
}

// NewSampleStream starts consuming src. The stream must be closed by the
// caller.
func NewSampleStream(ctx context.Context, src Receiver, operation string) *SampleStream {
	return &SampleStream{pump: newPump(ctx, src, operation, func() (*model.SampleResponse, error) {
		var msg wire.SampleTextResponse
		if err := src.RecvMsg(&msg); err != nil {
			return nil, err
		}
		return codec.DecodeSampleResponse(&msg), nil
	})}
}

// Drain reads s to completion, closes it and returns the aggregated
// response. onDelta, when not nil, observes each chunk's delta in order.
func Drain(s *ChatStream, onDelta func(Delta)) (*model.ChatResponse, error) {
	defer s.Close()
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return s.Response(), nil
		}
		if err != nil {
			return nil, err
		}
		if onDelta != nil {
			onDelta(Delta{
				Text:         chunk.Delta,
				Reasoning:    chunk.ReasoningDelta,
				ToolCalls:    chunk.ToolCalls,
				FinishReason: chunk.FinishReason,
			})
		}
	}
}

func newPump[T any](ctx context.Context, src Receiver, operation string, read func() (T, error)) *pump[T] {
	cctx, cancel := context.WithCancel(ctx)
	p := &pump[T]{
		ctx:       cctx,
		cancel:    cancel,
		src:       src,
		operation: operation,
		items:     make(chan T, 32),
	}
	go p.run(read)
	return p
}

// Recv returns the next item, io.EOF when the stream completed normally, or
// a classified error.
func (p *pump[T]) Recv() (T, error) {
	var zero T
	select {
	case item, ok := <-p.items:
		if ok {
			return item, nil
		}
		if err := p.err(); err != nil {
			return zero, err
		}
		return zero, io.EOF
	case <-p.ctx.Done():
		err := p.classify(p.ctx.Err())
		p.setErr(err)
		return zero, err
	}
}

// Close cancels the stream and releases the transport. It is safe to call
// more than once.
func (p *pump[T]) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		if p.src != nil {
			p.closeErr = p.src.Close()
		}
	})
	return p.closeErr
}

func (p *pump[T]) run(read func() (T, error)) {
	defer close(p.items)
	for {
		if err := p.ctx.Err(); err != nil {
			p.setErr(p.classify(err))
			return
		}
		item, err := read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if cerr := p.ctx.Err(); cerr != nil {
				err = cerr
			}
			p.setErr(p.classify(err))
			return
		}
		select {
		case p.items <- item:
		case <-p.ctx.Done():
			p.setErr(p.classify(p.ctx.Err()))
			return
		}
	}
}

func (p *pump[T]) classify(err error) error {
	if err == nil {
		return nil
	}
	return grokerr.Classify(err).WithOperation(p.operation)
}

func (p *pump[T]) setErr(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.errSet {
		return
	}
	p.errSet = true
	p.finalErr = err
}

func (p *pump[T]) err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.finalErr
}
