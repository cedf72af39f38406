package codec

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// DecodeChatResponse translates a completion response. The first output
// carries the result; a response without outputs or without a message is
// rejected.
func DecodeChatResponse(resp *wire.GetChatCompletionResponse) (*model.ChatResponse, error) {
	if resp == nil || len(resp.Outputs) == 0 {
		return nil, grokerr.InvalidRequest("response has no outputs")
	}
	output := resp.Outputs[0]
	if output.Message == nil {
		return nil, grokerr.InvalidRequest("output has no message")
	}
	msg := output.Message

	out := &model.ChatResponse{
		ID:                resp.ID,
		Content:           msg.Content,
		FinishReason:      DecodeFinishReason(output.FinishReason),
		Model:             resp.Model,
		Usage:             decodeUsage(resp.Usage),
		Citations:         resp.Citations,
		ReasoningContent:  msg.ReasoningContent,
		EncryptedContent:  msg.EncryptedContent,
		Logprobs:          decodeLogprobs(output.Logprobs),
		Created:           decodeTime(resp.Created),
		SystemFingerprint: resp.SystemFingerprint,
	}
	for _, tc := range msg.ToolCalls {
		if call, ok := decodeToolCall(tc); ok {
			out.ToolCalls = append(out.ToolCalls, call)
		}
	}
	return out, nil
}

// DecodeChatChunk translates one streamed chunk. Only the first output is
// read. An unset finish reason decodes to the empty value so that it never
// overrides a reason reported earlier in the stream.
func DecodeChatChunk(chunk *wire.GetChatCompletionChunk) model.ChatChunk {
	if chunk == nil {
		return model.ChatChunk{}
	}
	out := model.ChatChunk{
		ID:                chunk.ID,
		Model:             chunk.Model,
		Citations:         chunk.Citations,
		SystemFingerprint: chunk.SystemFingerprint,
		Created:           decodeTime(chunk.Created),
	}
	if chunk.Usage != nil {
		u := decodeUsage(chunk.Usage)
		out.Usage = &u
	}
	if len(chunk.Outputs) == 0 {
		return out
	}
	output := chunk.Outputs[0]
	if output.FinishReason != wire.ReasonInvalid {
		out.FinishReason = DecodeFinishReason(output.FinishReason)
	}
	out.Logprobs = decodeLogprobs(output.Logprobs)
	if d := output.Delta; d != nil {
		out.Delta = d.Content
		out.ReasoningDelta = d.ReasoningContent
		out.EncryptedContent = d.EncryptedContent
		for _, tc := range d.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, decodeToolCallDelta(tc))
		}
	}
	return out
}

// DecodeDeferred translates a deferred poll result. The response is decoded
// only when the status is done and a response is present.
func DecodeDeferred(resp *wire.GetDeferredCompletionResponse) (model.DeferredResult, error) {
	if resp == nil {
		return model.DeferredResult{Status: model.DeferredStatusUnknown}, nil
	}
	res := model.DeferredResult{Status: DecodeDeferredStatus(resp.Status)}
	if res.Status == model.DeferredStatusDone && resp.Response != nil {
		r, err := DecodeChatResponse(resp.Response)
		if err != nil {
			return model.DeferredResult{}, err
		}
		res.Response = r
	}
	return res, nil
}

// DecodeDeferredStatus maps a wire deferred status.
func DecodeDeferredStatus(s wire.DeferredStatus) model.DeferredStatus {
	switch s {
	case wire.DeferredPending:
		return model.DeferredStatusPending
	case wire.DeferredDone:
		return model.DeferredStatusDone
	case wire.DeferredExpired:
		return model.DeferredStatusExpired
	default:
		return model.DeferredStatusUnknown
	}
}

// DecodeFinishReason maps a wire finish reason. Max length and max context
// both map to FinishReasonLength.
func DecodeFinishReason(r wire.FinishReason) model.FinishReason {
	switch r {
	case wire.ReasonInvalid:
		return model.FinishReasonUnspecified
	case wire.ReasonMaxLen, wire.ReasonMaxContext:
		return model.FinishReasonLength
	case wire.ReasonStop:
		return model.FinishReasonStop
	case wire.ReasonToolCalls:
		return model.FinishReasonToolCalls
	case wire.ReasonTimeLimit:
		return model.FinishReasonTimeLimit
	default:
		return model.FinishReasonUnknown
	}
}

// DecodeSampleFinishReason maps a sample finish reason. Unlike chat, max
// context stays distinct from max length.
func DecodeSampleFinishReason(r wire.FinishReason) model.FinishReason {
	if r == wire.ReasonMaxContext {
		return model.FinishReasonMaxContext
	}
	return DecodeFinishReason(r)
}

// DecodeToolCallKind maps a wire tool call type.
func DecodeToolCallKind(t wire.ToolCallType) model.ToolCallKind {
	switch t {
	case wire.ToolCallTypeClientSide:
		return model.ToolCallKindClientSide
	case wire.ToolCallTypeWebSearch:
		return model.ToolCallKindWebSearch
	case wire.ToolCallTypeXSearch:
		return model.ToolCallKindXSearch
	case wire.ToolCallTypeCodeExecution:
		return model.ToolCallKindCodeExecution
	case wire.ToolCallTypeCollectionsSearch:
		return model.ToolCallKindCollectionsSearch
	case wire.ToolCallTypeMCP:
		return model.ToolCallKindMCP
	case wire.ToolCallTypeDocumentSearch:
		return model.ToolCallKindDocumentSearch
	default:
		return model.ToolCallKindUnknown
	}
}

// DecodeToolCallStatus maps a wire tool call status.
func DecodeToolCallStatus(s wire.ToolCallStatus) model.ToolCallStatus {
	switch s {
	case wire.ToolCallStatusInProgress:
		return model.ToolCallStatusInProgress
	case wire.ToolCallStatusCompleted:
		return model.ToolCallStatusCompleted
	case wire.ToolCallStatusIncomplete:
		return model.ToolCallStatusIncomplete
	case wire.ToolCallStatusFailed:
		return model.ToolCallStatusFailed
	default:
		return model.ToolCallStatusUnknown
	}
}

// decodeToolCall drops calls that carry no function payload.
func decodeToolCall(tc wire.ToolCall) (model.ToolCall, bool) {
	if tc.Function == nil {
		return model.ToolCall{}, false
	}
	return model.ToolCall{
		ID:           tc.ID,
		Kind:         DecodeToolCallKind(tc.Type),
		Status:       DecodeToolCallStatus(tc.Status),
		ErrorMessage: tc.ErrorMessage,
		Function:     model.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
	}, true
}

func decodeToolCallDelta(tc wire.ToolCall) model.ToolCallDelta {
	d := model.ToolCallDelta{
		Index:        int(tc.Index),
		ID:           tc.ID,
		Kind:         DecodeToolCallKind(tc.Type),
		Status:       DecodeToolCallStatus(tc.Status),
		ErrorMessage: tc.ErrorMessage,
	}
	if tc.Function != nil {
		d.Name = tc.Function.Name
		d.Arguments = tc.Function.Arguments
	}
	return d
}

func decodeUsage(u *wire.SamplingUsage) model.Usage {
	if u == nil {
		return model.Usage{}
	}
	return model.Usage{
		PromptTokens:       u.PromptTokens,
		CompletionTokens:   u.CompletionTokens,
		TotalTokens:        u.TotalTokens,
		CachedPromptTokens: u.CachedPromptTextTokens,
		ReasoningTokens:    u.ReasoningTokens,
		NumSourcesUsed:     u.NumSourcesUsed,
	}
}

func decodeLogprobs(lp *wire.LogProbs) *model.Logprobs {
	if lp == nil || len(lp.Content) == 0 {
		return nil
	}
	out := &model.Logprobs{Content: make([]model.Logprob, 0, len(lp.Content))}
	for _, p := range lp.Content {
		item := model.Logprob{Token: p.Token, Logprob: p.Logprob, Bytes: p.Bytes}
		for _, top := range p.TopLogprobs {
			item.TopLogprobs = append(item.TopLogprobs, model.TopLogprob{
				Token:   top.Token,
				Logprob: top.Logprob,
				Bytes:   top.Bytes,
			})
		}
		out.Content = append(out.Content, item)
	}
	return out
}

func decodeTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}
