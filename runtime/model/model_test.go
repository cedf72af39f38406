package model

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/grokrpc/grok-go/runtime/grokerr"
)

func TestChatRequestValidate(t *testing.T) {
	t.Run("rejects empty message list", func(t *testing.T) {
		err := NewChatRequest().Validate()
		require.Error(t, err)
		assert.Equal(t, grokerr.KindInvalidRequest, grokerr.KindOf(err))
	})

	t.Run("rejects duplicate function names", func(t *testing.T) {
		req := NewChatRequest().
			UserMessage("hi").
			AddTool(Function("lookup", "a"), Function("lookup", "b"))
		err := req.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
		assert.Contains(t, err.Error(), `duplicate function name "lookup"`)
	})

	t.Run("allows several server-side tools", func(t *testing.T) {
		req := NewChatRequest().
			UserMessage("hi").
			AddTool(WebSearchTool{}, WebSearchTool{}, CodeExecutionTool{}, Function("lookup", ""))
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects max turns below one", func(t *testing.T) {
		err := NewChatRequest().UserMessage("hi").WithMaxTurns(0).Validate()
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	})

	t.Run("rejects system message after a turn", func(t *testing.T) {
		err := NewChatRequest().UserMessage("hi").SystemMessage("late").Validate()
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	})

	t.Run("rejects forced choice of undeclared function", func(t *testing.T) {
		err := NewChatRequest().
			UserMessage("hi").
			AddTool(Function("a", "")).
			WithToolChoice(ToolChoiceFunction("b")).
			Validate()
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	})

	t.Run("rejects invalid parameter schema", func(t *testing.T) {
		err := NewChatRequest().
			UserMessage("hi").
			AddTool(Function("a", "").WithParameters(json.RawMessage(`{"type": 5}`))).
			Validate()
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	})

	t.Run("rejects invalid response schema", func(t *testing.T) {
		err := NewChatRequest().
			UserMessage("hi").
			WithJSONSchema(json.RawMessage(`{"type": "nope"}`)).
			Validate()
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	})

	t.Run("rejects top logprobs out of range", func(t *testing.T) {
		err := NewChatRequest().UserMessage("hi").WithLogprobs(9).Validate()
		assert.ErrorIs(t, err, grokerr.ErrInvalidRequest)
	})

	t.Run("accepts a complete request", func(t *testing.T) {
		req := NewChatRequest().
			SystemMessage("be brief").
			UserWithImage("what is this?", "https://example.com/cat.png", ImageDetailHigh).
			AssistantMessage("a cat").
			UserMessage("thanks").
			WithModel("grok-4").
			WithMaxTokens(128).
			WithTemperature(0.2).
			WithReasoningEffort(ReasoningEffortHigh).
			WithJSONSchema(json.RawMessage(`{"type":"object","properties":{"answer":{"type":"string"}}}`)).
			AddTool(Function("lookup", "find things").WithParameters(json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"]}`))).
			WithToolChoice(ToolChoiceFunction("lookup")).
			WithMaxTurns(3).
			WithLogprobs(2)
		assert.NoError(t, req.Validate())
	})
}

func TestFunctionToolArguments(t *testing.T) {
	tool := Function("lookup", "").WithParameters(json.RawMessage(
		`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"]}`))

	assert.NoError(t, tool.ValidateArguments(`{"q":"go"}`))
	assert.Error(t, tool.ValidateArguments(`{"x":1}`))
	assert.Error(t, tool.ValidateArguments(`{"q":`))

	var args struct {
		Q string `json:"q"`
	}
	call := FunctionCall{Name: "lookup", Arguments: `{"q":"go"}`}
	require.NoError(t, call.ParseArguments(&args))
	assert.Equal(t, "go", args.Q)
	assert.Error(t, FunctionCall{Name: "lookup"}.ParseArguments(&args))
}

func TestFunctionToolDefaultSchema(t *testing.T) {
	assert.JSONEq(t, `{"type":"object","properties":{}}`, string(Function("f", "").Schema()))
}

func TestCalculateCost(t *testing.T) {
	m := &LanguageModel{
		Name:                     "grok-fixture",
		PromptTextTokenPrice:     2000,
		CachedPromptTokenPrice:   50,
		CompletionTextTokenPrice: 10000,
	}

	got := m.CalculateCost(10000, 1000, 0)
	want := 2000.0*10000/1e8 + 10000.0*1000/1e8
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.3, got, 1e-12)

	assert.InDelta(t, 0.3+50.0*1000/1e8, m.CalculateCost(10000, 1000, 1000), 1e-12)
	assert.Zero(t, m.CalculateCost(0, 0, 0))
}

func TestSupportsMultimodal(t *testing.T) {
	m := &LanguageModel{InputModalities: []Modality{ModalityText, ModalityImage}}
	assert.True(t, m.SupportsMultimodal())
	m.InputModalities = []Modality{ModalityText}
	assert.False(t, m.SupportsMultimodal())
}

func TestAPIKeyInfoStatus(t *testing.T) {
	cases := []struct {
		info   APIKeyInfo
		status string
		active bool
	}{
		{APIKeyInfo{}, "Active", true},
		{APIKeyInfo{APIKeyBlocked: true, TeamBlocked: true}, "Blocked (Key)", false},
		{APIKeyInfo{TeamBlocked: true}, "Blocked (Team)", false},
		{APIKeyInfo{Disabled: true}, "Disabled", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.info.Status())
		assert.Equal(t, tc.active, tc.info.IsActive())
	}
}

func TestAPIKeyNeverRenders(t *testing.T) {
	key := NewAPIKey("  xai-super-secret  ")
	assert.Equal(t, "xai-super-secret", key.Reveal())

	for _, verb := range []string{"%s", "%v", "%+v", "%#v", "%q", "%x"} {
		out := fmt.Sprintf(verb, key)
		assert.NotContains(t, out, "super-secret", verb)
	}
	holder := struct{ Key APIKey }{Key: key}
	assert.NotContains(t, fmt.Sprintf("%+v", holder), "super-secret")
	assert.NotContains(t, fmt.Sprintf("%#v", holder), "super-secret")

	js, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.NotContains(t, string(js), "super-secret")

	ys, err := yaml.Marshal(holder)
	require.NoError(t, err)
	assert.NotContains(t, string(ys), "super-secret")

	var loaded struct {
		Key APIKey `yaml:"key"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("key: xai-from-file\n"), &loaded))
	assert.Equal(t, "xai-from-file", loaded.Key.Reveal())
}

func TestTokenizeResponseHelpers(t *testing.T) {
	resp := &TokenizeResponse{Tokens: []Token{{ID: 1, String: "Hel"}, {ID: 2, String: "lo"}}}
	assert.Equal(t, 2, resp.TokenCount())
	assert.Equal(t, "Hello", resp.Text())
}

func TestWithOptions(t *testing.T) {
	temp := float32(0.5)
	req := NewChatRequest().UserMessage("hi").WithOptions(CompletionOptions{
		Model:       "grok-4",
		Temperature: &temp,
		Stop:        []string{"END"},
	})
	assert.Equal(t, "grok-4", req.Model)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, temp, *req.Temperature)
	assert.Equal(t, []string{"END"}, req.Stop)
}
