package stream

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grokrpc/grok-go/runtime/model"
)

func TestAggregatorEmptySequence(t *testing.T) {
	var agg Aggregator
	resp := agg.Response()
	assert.Equal(t, model.FinishReasonUnspecified, resp.FinishReason)
	assert.Empty(t, resp.Content)
	assert.Empty(t, resp.ToolCalls)
	assert.True(t, resp.Usage.IsZero())
	assert.Nil(t, resp.Logprobs)
}

func TestAggregatorTextAndToolCalls(t *testing.T) {
	var agg Aggregator
	chunks := []model.ChatChunk{
		{ID: "r1", Model: "grok-4", Delta: "Let me "},
		{Delta: "check.", ToolCalls: []model.ToolCallDelta{{Index: 0, ID: "call-a", Kind: model.ToolCallKindClientSide, Name: "weather", Arguments: `{"city":`}}},
		{ToolCalls: []model.ToolCallDelta{
			{Index: 0, Name: "ignored", Arguments: `"Paris"}`},
			{Index: 1, ID: "call-b", Name: "time", Arguments: `{}`},
			{Index: 2, ID: "call-c", Name: "noop"},
		}},
		{FinishReason: model.FinishReasonToolCalls, Usage: &model.Usage{PromptTokens: 4, CompletionTokens: 6, TotalTokens: 10}},
	}
	var deltas []Delta
	for _, c := range chunks {
		deltas = append(deltas, agg.Add(c))
	}

	assert.Equal(t, "Let me ", deltas[0].Text)
	assert.False(t, deltas[0].Done())
	assert.True(t, deltas[3].Done())

	resp := agg.Response()
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, "grok-4", resp.Model)
	assert.Equal(t, "Let me check.", resp.Content)
	assert.Equal(t, model.FinishReasonToolCalls, resp.FinishReason)
	assert.Equal(t, int32(10), resp.Usage.TotalTokens)

	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "call-a", resp.ToolCalls[0].ID)
	assert.Equal(t, "weather", resp.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"city":"Paris"}`, resp.ToolCalls[0].Function.Arguments)
	assert.True(t, resp.ToolCalls[0].IsClientSide())
	assert.Equal(t, "time", resp.ToolCalls[1].Function.Name)
	assert.Equal(t, model.ToolCallKindUnknown, resp.ToolCalls[1].Kind)
}

func TestAggregatorOutOfOrderIndices(t *testing.T) {
	var agg Aggregator
	agg.Add(model.ChatChunk{ToolCalls: []model.ToolCallDelta{{Index: 5, Name: "b", Arguments: "{}"}}})
	agg.Add(model.ChatChunk{ToolCalls: []model.ToolCallDelta{{Index: 2, Name: "a", Arguments: "{}"}}})

	calls := agg.Response().ToolCalls
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Function.Name)
	assert.Equal(t, "b", calls[1].Function.Name)
}

func TestAggregatorFinishReasonLastNonEmpty(t *testing.T) {
	var agg Aggregator
	agg.Add(model.ChatChunk{FinishReason: model.FinishReasonLength})
	agg.Add(model.ChatChunk{Delta: "late"})
	assert.Equal(t, model.FinishReasonLength, agg.Response().FinishReason)
	agg.Add(model.ChatChunk{FinishReason: model.FinishReasonStop})
	assert.Equal(t, model.FinishReasonStop, agg.Response().FinishReason)
}

func TestAggregatorConcatenationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("content is the concatenation of deltas", prop.ForAll(
		func(deltas []string) bool {
			var agg Aggregator
			for _, d := range deltas {
				agg.Add(model.ChatChunk{Delta: d})
			}
			return agg.Response().Content == strings.Join(deltas, "")
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}

func TestAggregatorToolFragmentsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("arguments concatenate and the first non-empty name wins", prop.ForAll(
		func(names, args []string, index int) bool {
			var agg Aggregator
			n := min(len(names), len(args))
			for i := range n {
				agg.Add(model.ChatChunk{ToolCalls: []model.ToolCallDelta{{
					Index:     index,
					Name:      names[i],
					Arguments: args[i],
				}}})
			}

			wantArgs := strings.Join(args[:n], "")
			wantName := ""
			for _, name := range names[:n] {
				if name != "" {
					wantName = name
					break
				}
			}

			calls := agg.Response().ToolCalls
			if wantArgs == "" {
				return len(calls) == 0
			}
			return len(calls) == 1 &&
				calls[0].Function.Arguments == wantArgs &&
				calls[0].Function.Name == wantName
		},
		gen.SliceOf(gen.OneGenOf(gen.Const(""), gen.AlphaString())),
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(0, 16),
	))

	properties.TestingRun(t)
}

func TestAggregatorLastNonEmptyWinsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("an empty value never overwrites a populated one", prop.ForAll(
		func(total int32, citation string, token string) bool {
			var agg Aggregator
			usage := &model.Usage{TotalTokens: total}
			logprobs := &model.Logprobs{Content: []model.Logprob{{Token: token}}}
			agg.Add(model.ChatChunk{Usage: usage, Citations: []string{citation}, Logprobs: logprobs})
			agg.Add(model.ChatChunk{Usage: &model.Usage{}, Citations: nil, Logprobs: &model.Logprobs{}})
			agg.Add(model.ChatChunk{})

			resp := agg.Response()
			return resp.Usage.TotalTokens == total &&
				len(resp.Citations) == 1 && resp.Citations[0] == citation &&
				resp.Logprobs != nil && resp.Logprobs.Content[0].Token == token
		},
		gen.Int32Range(1, 1<<20),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("a later populated value replaces an earlier one", prop.ForAll(
		func(first, second int32) bool {
			var agg Aggregator
			agg.Add(model.ChatChunk{Usage: &model.Usage{TotalTokens: first}})
			agg.Add(model.ChatChunk{Usage: &model.Usage{TotalTokens: second}})
			return agg.Response().Usage.TotalTokens == second
		},
		gen.Int32Range(1, 1<<20),
		gen.Int32Range(1, 1<<20),
	))

	properties.TestingRun(t)
}
