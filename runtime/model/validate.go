package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/grokrpc/grok-go/runtime/grokerr"
)

// MaxTopLogprobs is the largest number of alternatives the service returns
// per token position.
const MaxTopLogprobs = 8

// Validate checks the request before any network call. It reports the first
// violation as a grokerr InvalidRequest error.
func (r *ChatRequest) Validate() error {
	if r == nil || len(r.Messages) == 0 {
		return grokerr.InvalidRequest("request must contain at least one message")
	}
	if err := validateMessages(r.Messages); err != nil {
		return err
	}
	if err := validateTools(r.Tools, r.ToolChoice); err != nil {
		return err
	}
	if r.MaxTurns != nil && *r.MaxTurns < 1 {
		return grokerr.InvalidRequestf("max_turns must be at least 1, got %d", *r.MaxTurns)
	}
	if r.TopLogprobs != nil {
		if *r.TopLogprobs < 0 || *r.TopLogprobs > MaxTopLogprobs {
			return grokerr.InvalidRequestf("top_logprobs must be between 0 and %d, got %d", MaxTopLogprobs, *r.TopLogprobs)
		}
		if !r.Logprobs {
			return grokerr.InvalidRequest("top_logprobs requires logprobs")
		}
	}
	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return grokerr.InvalidRequestf("max_tokens must be positive, got %d", *r.MaxTokens)
	}
	if rf := r.ResponseFormat; rf != nil {
		switch rf.Type {
		case ResponseFormatText, ResponseFormatJSONObject:
		case ResponseFormatJSONSchema:
			if err := compileSchema("response_format", rf.Schema); err != nil {
				return err
			}
		default:
			return grokerr.InvalidRequestf("unsupported response format %q", rf.Type)
		}
	}
	switch r.ReasoningEffort {
	case "", ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
	default:
		return grokerr.InvalidRequestf("unsupported reasoning effort %q", r.ReasoningEffort)
	}
	return nil
}

// validateMessages rejects nil messages, empty content and system messages
// that follow a conversational turn.
func validateMessages(msgs []Message) error {
	seenTurn := false
	for i, m := range msgs {
		switch v := m.(type) {
		case SystemMessage:
			if seenTurn {
				return grokerr.InvalidRequestf("messages[%d]: system message must precede conversational turns", i)
			}
		case UserMessage:
			seenTurn = true
			if err := validateContent(i, v.Content); err != nil {
				return err
			}
		case AssistantMessage:
			seenTurn = true
			if v.Content == nil && len(v.ToolCalls) == 0 {
				return grokerr.InvalidRequestf("messages[%d]: assistant message has no content", i)
			}
		case ToolMessage:
			seenTurn = true
			if v.ToolCallID == "" {
				return grokerr.InvalidRequestf("messages[%d]: tool message requires a tool call id", i)
			}
		case nil:
			return grokerr.InvalidRequestf("messages[%d]: nil message", i)
		default:
			return grokerr.InvalidRequestf("messages[%d]: unsupported message type %T", i, m)
		}
	}
	return nil
}

func validateContent(i int, c MessageContent) error {
	switch v := c.(type) {
	case TextContent:
		return nil
	case PartsContent:
		if len(v) == 0 {
			return grokerr.InvalidRequestf("messages[%d]: multimodal content has no parts", i)
		}
		for j, p := range v {
			switch pv := p.(type) {
			case TextPart:
			case ImageURLPart:
				if pv.URL == "" {
					return grokerr.InvalidRequestf("messages[%d].parts[%d]: image url is empty", i, j)
				}
			case FilePart:
				if pv.FileID == "" {
					return grokerr.InvalidRequestf("messages[%d].parts[%d]: file id is empty", i, j)
				}
			default:
				return grokerr.InvalidRequestf("messages[%d].parts[%d]: unsupported part %T", i, j, p)
			}
		}
		return nil
	default:
		return grokerr.InvalidRequestf("messages[%d]: missing content", i)
	}
}

func validateTools(tools []Tool, choice *ToolChoice) error {
	names := make(map[string]struct{}, len(tools))
	for i, t := range tools {
		switch v := t.(type) {
		case FunctionTool:
			if v.Name == "" {
				return grokerr.InvalidRequestf("tools[%d]: function name is required", i)
			}
			if _, dup := names[v.Name]; dup {
				return grokerr.InvalidRequestf("tools[%d]: duplicate function name %q", i, v.Name)
			}
			names[v.Name] = struct{}{}
			if len(v.Parameters) > 0 {
				if err := compileSchema(fmt.Sprintf("tools[%d] %s", i, v.Name), v.Parameters); err != nil {
					return err
				}
			}
		case MCPTool:
			if v.ServerURL == "" {
				return grokerr.InvalidRequestf("tools[%d]: mcp server url is required", i)
			}
		case CollectionsSearchTool:
			if len(v.CollectionIDs) == 0 {
				return grokerr.InvalidRequestf("tools[%d]: collections search requires collection ids", i)
			}
		case WebSearchTool, XSearchTool, CodeExecutionTool, DocumentSearchTool:
		case nil:
			return grokerr.InvalidRequestf("tools[%d]: nil tool", i)
		default:
			return grokerr.InvalidRequestf("tools[%d]: unsupported tool type %T", i, t)
		}
	}
	if choice != nil {
		switch choice.Mode {
		case ToolChoiceModeAuto, ToolChoiceModeNone, ToolChoiceModeRequired:
		case ToolChoiceModeFunction:
			if _, ok := names[choice.Function]; !ok {
				return grokerr.InvalidRequestf("tool choice names undeclared function %q", choice.Function)
			}
		default:
			return grokerr.InvalidRequestf("unsupported tool choice %q", choice.Mode)
		}
	}
	return nil
}

// compileSchema checks that raw is a valid JSON Schema document.
func compileSchema(where string, raw json.RawMessage) error {
	if _, err := CompileSchema(raw); err != nil {
		return grokerr.InvalidRequestf("%s: %v", where, err)
	}
	return nil
}

// CompileSchema compiles a JSON Schema document.
func CompileSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("schema is empty")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateArguments checks call arguments against the tool's parameter
// schema.
func (t FunctionTool) ValidateArguments(arguments string) error {
	schema, err := CompileSchema(t.Schema())
	if err != nil {
		return fmt.Errorf("function %q: %w", t.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(arguments)))
	if err != nil {
		return fmt.Errorf("function %q: decode arguments: %w", t.Name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("function %q: %w", t.Name, err)
	}
	return nil
}

// Validate checks the embed request before any network call.
func (r *EmbedRequest) Validate() error {
	if r == nil || len(r.Inputs) == 0 {
		return grokerr.InvalidRequest("embed request must contain at least one input")
	}
	for i, in := range r.Inputs {
		if in.Image != nil && in.Image.URL == "" {
			return grokerr.InvalidRequestf("inputs[%d]: image url is empty", i)
		}
	}
	switch r.EncodingFormat {
	case "", EmbedEncodingFloat, EmbedEncodingBase64:
	default:
		return grokerr.InvalidRequestf("unsupported embedding encoding %q", r.EncodingFormat)
	}
	return nil
}

// Validate checks the tokenize request before any network call.
func (r *TokenizeRequest) Validate() error {
	if r == nil || r.Text == "" {
		return grokerr.InvalidRequest("tokenize request requires text")
	}
	return nil
}

// Validate checks the sample request before any network call.
func (r *SampleRequest) Validate() error {
	if r == nil || len(r.Prompts) == 0 {
		return grokerr.InvalidRequest("sample request must contain at least one prompt")
	}
	if r.N != nil && *r.N < 1 {
		return grokerr.InvalidRequestf("n must be at least 1, got %d", *r.N)
	}
	if r.TopLogprobs != nil && (*r.TopLogprobs < 0 || *r.TopLogprobs > MaxTopLogprobs) {
		return grokerr.InvalidRequestf("top_logprobs must be between 0 and %d, got %d", MaxTopLogprobs, *r.TopLogprobs)
	}
	return nil
}

// Validate checks the image request before any network call.
func (r *ImageRequest) Validate() error {
	if r == nil || r.Prompt == "" {
		return grokerr.InvalidRequest("image request requires a prompt")
	}
	if r.N != nil && *r.N < 1 {
		return grokerr.InvalidRequestf("n must be at least 1, got %d", *r.N)
	}
	switch r.Format {
	case "", ImageFormatBase64, ImageFormatURL:
	default:
		return grokerr.InvalidRequestf("unsupported image format %q", r.Format)
	}
	return nil
}

// Validate checks the search request before any network call.
func (r *DocumentSearchRequest) Validate() error {
	if r == nil || r.Query == "" {
		return grokerr.InvalidRequest("document search requires a query")
	}
	if len(r.CollectionIDs) == 0 {
		return grokerr.InvalidRequest("document search requires at least one collection id")
	}
	if r.Limit != nil && *r.Limit < 1 {
		return grokerr.InvalidRequestf("limit must be at least 1, got %d", *r.Limit)
	}
	return nil
}
