// Package stream folds streamed chat chunks into complete responses and
// adapts transport streams into chunk iterators.
package stream

import (
	"slices"
	"strings"
	"time"

	"github.com/grokrpc/grok-go/runtime/model"
)

type (
	// Aggregator folds an ordered sequence of chat chunks into one response.
	// The zero value is ready to use. Aggregator is not safe for concurrent
	// use; ChatStream serializes access to its own aggregator.
	Aggregator struct {
		id                string
		model             string
		systemFingerprint string
		created           time.Time

		content   strings.Builder
		reasoning strings.Builder
		encrypted string

		calls map[int]*callBuffer

		finish    model.FinishReason
		usage     *model.Usage
		citations []string
		logprobs  *model.Logprobs
	}

	// Delta is what one chunk contributed, for callers rendering output as it
	// arrives.
	Delta struct {
		Text         string
		Reasoning    string
		ToolCalls    []model.ToolCallDelta
		FinishReason model.FinishReason
	}

	// callBuffer accumulates the fragments of one tool call.
	callBuffer struct {
		id           string
		kind         model.ToolCallKind
		status       model.ToolCallStatus
		errorMessage string
		name         string
		args         strings.Builder
	}
)

// Done reports whether the chunk carried a finish reason.
func (d Delta) Done() bool { return d.FinishReason != "" }

// Add folds chunk into the aggregate and returns its delta.
func (a *Aggregator) Add(chunk model.ChatChunk) Delta {
	if chunk.ID != "" {
		a.id = chunk.ID
	}
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.SystemFingerprint != "" {
		a.systemFingerprint = chunk.SystemFingerprint
	}
	if !chunk.Created.IsZero() && a.created.IsZero() {
		a.created = chunk.Created
	}

	a.content.WriteString(chunk.Delta)
	a.reasoning.WriteString(chunk.ReasoningDelta)
	if chunk.EncryptedContent != "" {
		a.encrypted = chunk.EncryptedContent
	}

	for _, frag := range chunk.ToolCalls {
		a.addFragment(frag)
	}

	if chunk.FinishReason != "" {
		a.finish = chunk.FinishReason
	}
	if chunk.Usage != nil && !chunk.Usage.IsZero() {
		u := *chunk.Usage
		a.usage = &u
	}
	if len(chunk.Citations) > 0 {
		a.citations = slices.Clone(chunk.Citations)
	}
	if chunk.Logprobs != nil && len(chunk.Logprobs.Content) > 0 {
		a.logprobs = chunk.Logprobs
	}

	return Delta{
		Text:         chunk.Delta,
		Reasoning:    chunk.ReasoningDelta,
		ToolCalls:    chunk.ToolCalls,
		FinishReason: chunk.FinishReason,
	}
}

// addFragment merges one tool call fragment. The name is fixed by the first
// fragment that carries one; argument pieces are appended in arrival order.
func (a *Aggregator) addFragment(frag model.ToolCallDelta) {
	if a.calls == nil {
		a.calls = make(map[int]*callBuffer)
	}
	buf, ok := a.calls[frag.Index]
	if !ok {
		buf = &callBuffer{}
		a.calls[frag.Index] = buf
	}
	if buf.name == "" {
		buf.name = frag.Name
	}
	if buf.id == "" {
		buf.id = frag.ID
	}
	if frag.Kind != "" && (buf.kind == "" || buf.kind == model.ToolCallKindUnknown) {
		buf.kind = frag.Kind
	}
	if frag.Status != "" {
		buf.status = frag.Status
	}
	if frag.ErrorMessage != "" {
		buf.errorMessage = frag.ErrorMessage
	}
	buf.args.WriteString(frag.Arguments)
}

// Response reconstructs the aggregate so far. It can be called at any point
// and does not reset the aggregator.
func (a *Aggregator) Response() *model.ChatResponse {
	resp := &model.ChatResponse{
		ID:                a.id,
		Content:           a.content.String(),
		FinishReason:      a.finish,
		Model:             a.model,
		Citations:         a.citations,
		ReasoningContent:  a.reasoning.String(),
		EncryptedContent:  a.encrypted,
		Logprobs:          a.logprobs,
		Created:           a.created,
		SystemFingerprint: a.systemFingerprint,
	}
	if resp.FinishReason == "" {
		resp.FinishReason = model.FinishReasonUnspecified
	}
	if a.usage != nil {
		resp.Usage = *a.usage
	}
	resp.ToolCalls = a.toolCalls()
	return resp
}

// toolCalls returns the calls with non-empty arguments in index order.
func (a *Aggregator) toolCalls() []model.ToolCall {
	if len(a.calls) == 0 {
		return nil
	}
	indices := make([]int, 0, len(a.calls))
	for i := range a.calls {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	var out []model.ToolCall
	for _, i := range indices {
		buf := a.calls[i]
		if buf.args.Len() == 0 {
			continue
		}
		kind := buf.kind
		if kind == "" {
			kind = model.ToolCallKindUnknown
		}
		status := buf.status
		if status == "" {
			status = model.ToolCallStatusInProgress
		}
		out = append(out, model.ToolCall{
			ID:           buf.id,
			Kind:         kind,
			Status:       status,
			ErrorMessage: buf.errorMessage,
			Function:     model.FunctionCall{Name: buf.name, Arguments: buf.args.String()},
		})
	}
	return out
}
