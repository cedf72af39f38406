package model

import "time"

type (
	// ChatResponse is the complete result of a chat completion, either
	// returned by a blocking call or reconstructed from a stream.
	ChatResponse struct {
		// ID identifies the completion; use it with stored completion calls
		// and as PreviousResponseID.
		ID string
		// Content is the generated text.
		Content string
		// FinishReason explains why generation stopped.
		FinishReason FinishReason
		// Model is the model that produced the response.
		Model string
		// Usage reports token consumption.
		Usage Usage
		// ToolCalls lists requested tool invocations in order.
		ToolCalls []ToolCall
		// Citations lists sources consulted by live search.
		Citations []string
		// ReasoningContent is the reasoning trace, when the model exposes one.
		ReasoningContent string
		// EncryptedContent is the encrypted reasoning trace when requested.
		EncryptedContent string
		// Logprobs holds token log probabilities when requested, nil otherwise.
		Logprobs *Logprobs
		// Created is the service-side creation time, zero when absent.
		Created time.Time
		// SystemFingerprint identifies the backend configuration.
		SystemFingerprint string
	}

	// ChatChunk is one unit of a streaming response. Chunks are ordered;
	// Usage is typically only set on the terminal chunk.
	ChatChunk struct {
		ID                string
		Model             string
		Delta             string
		ReasoningDelta    string
		EncryptedContent  string
		FinishReason      FinishReason
		Usage             *Usage
		ToolCalls         []ToolCallDelta
		Logprobs          *Logprobs
		Citations         []string
		SystemFingerprint string
		Created           time.Time
	}

	// ToolCallDelta is a fragment of a tool call. Fragments sharing an Index
	// belong to the same call; Arguments holds the next slice of the JSON
	// arguments string.
	ToolCallDelta struct {
		Index        int
		ID           string
		Kind         ToolCallKind
		Status       ToolCallStatus
		ErrorMessage string
		Name         string
		Arguments    string
	}

	// Usage reports token consumption for one completion.
	Usage struct {
		PromptTokens       int32
		CompletionTokens   int32
		TotalTokens        int32
		CachedPromptTokens int32
		ReasoningTokens    int32
		NumSourcesUsed     int32
	}

	// Logprobs holds per-token log probabilities.
	Logprobs struct {
		Content []Logprob
	}

	// Logprob is the log probability of one generated token.
	Logprob struct {
		Token       string
		Logprob     float32
		Bytes       []byte
		TopLogprobs []TopLogprob
	}

	// TopLogprob is an alternative token at one position.
	TopLogprob struct {
		Token   string
		Logprob float32
		Bytes   []byte
	}

	// FinishReason explains why generation stopped.
	FinishReason string

	// DeferredHandle identifies a deferred completion. Callers own it between
	// start and resolution.
	DeferredHandle struct {
		RequestID string
		IssuedAt  time.Time
	}

	// DeferredStatus is the state of a deferred completion as reported by
	// the service.
	DeferredStatus string

	// DeferredResult is the outcome of one deferred poll. Response is set
	// only when Status is DeferredStatusDone.
	DeferredResult struct {
		Status   DeferredStatus
		Response *ChatResponse
	}
)

const (
	// FinishReasonUnspecified means no finish reason was reported.
	FinishReasonUnspecified FinishReason = "unspecified"
	FinishReasonStop        FinishReason = "stop"
	FinishReasonLength      FinishReason = "length"
	FinishReasonMaxContext  FinishReason = "max_context"
	FinishReasonToolCalls   FinishReason = "tool_calls"
	FinishReasonTimeLimit   FinishReason = "time_limit"
	// FinishReasonUnknown is reported for values this client does not know.
	FinishReasonUnknown FinishReason = "unknown"
)

const (
	DeferredStatusPending DeferredStatus = "pending"
	DeferredStatusDone    DeferredStatus = "done"
	DeferredStatusExpired DeferredStatus = "expired"
	DeferredStatusUnknown DeferredStatus = "unknown"
)

// IsZero reports whether no counter is set.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// IsTerminal reports whether the reason marks the end of generation.
func (f FinishReason) IsTerminal() bool {
	return f != "" && f != FinishReasonUnspecified
}

// IsError reports whether generation stopped abnormally.
func (f FinishReason) IsError() bool {
	return f == FinishReasonTimeLimit
}

// HasToolCalls reports whether the response requests tool invocations.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// ClientToolCalls returns the tool calls the caller must execute.
func (r *ChatResponse) ClientToolCalls() []ToolCall {
	var out []ToolCall
	for _, c := range r.ToolCalls {
		if c.IsClientSide() {
			out = append(out, c)
		}
	}
	return out
}
