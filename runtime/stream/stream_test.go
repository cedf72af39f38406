package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// sliceReceiver replays messages then returns err (io.EOF when nil).
type sliceReceiver struct {
	mu     sync.Mutex
	msgs   []any
	err    error
	closed int
}

func (r *sliceReceiver) RecvMsg(m any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	next := r.msgs[0]
	r.msgs = r.msgs[1:]
	switch dst := m.(type) {
	case *wire.GetChatCompletionChunk:
		*dst = *next.(*wire.GetChatCompletionChunk)
	case *wire.SampleTextResponse:
		*dst = *next.(*wire.SampleTextResponse)
	}
	return nil
}

func (r *sliceReceiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

// blockingReceiver blocks in RecvMsg until closed.
type blockingReceiver struct {
	done      chan struct{}
	closeOnce sync.Once
}

func (r *blockingReceiver) RecvMsg(any) error {
	<-r.done
	return status.Error(codes.Canceled, "stream closed")
}

func (r *blockingReceiver) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

func textChunk(text string) *wire.GetChatCompletionChunk {
	return &wire.GetChatCompletionChunk{
		ID:      "r1",
		Outputs: []wire.CompletionOutputChunk{{Delta: &wire.Delta{Content: text}}},
	}
}

func TestChatStreamAggregates(t *testing.T) {
	src := &sliceReceiver{msgs: []any{
		textChunk("Hello"),
		textChunk(", world"),
		&wire.GetChatCompletionChunk{
			Outputs: []wire.CompletionOutputChunk{{FinishReason: wire.ReasonStop}},
			Usage:   &wire.SamplingUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		},
	}}
	s := NewChatStream(context.Background(), src, "GetCompletionChunk")

	var text string
	resp, err := Drain(s, func(d Delta) { text += d.Text })
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", text)
	assert.Equal(t, "Hello, world", resp.Content)
	assert.Equal(t, model.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, int32(5), resp.Usage.TotalTokens)
	assert.Equal(t, 1, src.closed)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, src.closed)
}

func TestChatStreamClassifiesErrors(t *testing.T) {
	src := &sliceReceiver{
		msgs: []any{textChunk("partial")},
		err:  status.Error(codes.Unavailable, "connection reset"),
	}
	s := NewChatStream(context.Background(), src, "GetCompletionChunk")
	defer s.Close()

	chunk, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", chunk.Delta)

	_, err = s.Recv()
	require.Error(t, err)
	assert.ErrorIs(t, err, grokerr.ErrTransport)
	assert.True(t, grokerr.IsRetryable(err))
	e, ok := grokerr.As(err)
	require.True(t, ok)
	assert.Equal(t, "GetCompletionChunk", e.Operation())

	assert.Equal(t, "partial", s.Response().Content)
}

func TestChatStreamResponseTracksReceivedChunks(t *testing.T) {
	src := &sliceReceiver{msgs: []any{textChunk("one "), textChunk("two "), textChunk("three")}}
	s := NewChatStream(context.Background(), src, "GetCompletionChunk")
	defer s.Close()

	// Let the pump read ahead of the caller.
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.msgs) == 0
	}, time.Second, time.Millisecond)
	assert.Empty(t, s.Response().Content)

	_, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "one ", s.Response().Content)

	_, err = s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "one two ", s.Response().Content)

	_, err = s.Recv()
	require.NoError(t, err)
	_, err = s.Recv()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "one two three", s.Response().Content)
}

func TestChatStreamCloseUnblocks(t *testing.T) {
	src := &blockingReceiver{done: make(chan struct{})}
	s := NewChatStream(context.Background(), src, "GetCompletionChunk")

	errc := make(chan error, 1)
	go func() {
		_, err := s.Recv()
		errc <- err
	}()
	require.NoError(t, s.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, grokerr.ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("Recv did not return after Close")
	}
}

func TestChatStreamContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &blockingReceiver{done: make(chan struct{})}
	s := NewChatStream(ctx, src, "GetCompletionChunk")
	defer s.Close()

	cancel()
	_, err := s.Recv()
	assert.ErrorIs(t, err, grokerr.ErrCancelled)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSampleStream(t *testing.T) {
	src := &sliceReceiver{msgs: []any{
		&wire.SampleTextResponse{Choices: []wire.SampleChoice{{Text: "Once"}}},
		&wire.SampleTextResponse{Choices: []wire.SampleChoice{{Text: " upon", FinishReason: wire.ReasonMaxLen}}},
	}}
	s := NewSampleStream(context.Background(), src, "SampleTextStreaming")
	defer s.Close()

	var text string
	var last model.FinishReason
	for {
		resp, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		for _, c := range resp.Choices {
			text += c.Text
			last = c.FinishReason
		}
	}
	assert.Equal(t, "Once upon", text)
	assert.Equal(t, model.FinishReasonLength, last)
}
