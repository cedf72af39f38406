package model

import "encoding/json"

type (
	// ChatRequest captures the parameters of one chat completion call. Build
	// it with NewChatRequest and the With*/Add* methods; the client never
	// mutates a request after submission. Optional scalars are pointers so
	// an unset value is distinguishable from zero.
	ChatRequest struct {
		// Messages is the ordered conversation. It must not be empty.
		Messages []Message
		// Model overrides the client's default model when non-empty.
		Model string

		MaxTokens        *int32
		Temperature      *float32
		TopP             *float32
		FrequencyPenalty *float32
		PresencePenalty  *float32
		Seed             *int32
		Stop             []string

		ReasoningEffort ReasoningEffort
		Search          *SearchConfig
		ResponseFormat  *ResponseFormat

		Tools             []Tool
		ToolChoice        *ToolChoice
		ParallelToolCalls *bool
		// MaxTurns bounds the number of agentic tool-calling rounds the
		// service runs server-side. Must be at least 1 when set.
		MaxTurns *int32

		User        string
		Logprobs    bool
		TopLogprobs *int32

		PreviousResponseID string
		StoreMessages      bool
		// UseEncryptedContent asks the service to return reasoning content in
		// encrypted form so it can be replayed in later turns.
		UseEncryptedContent bool
		Include             []IncludeOption
	}

	// ReasoningEffort hints how much internal deliberation the model performs.
	ReasoningEffort string

	// SearchMode selects live search behavior.
	SearchMode string

	// SearchSource names a live search source.
	SearchSource string

	// SearchConfig enables live search augmentation.
	SearchConfig struct {
		Mode       SearchMode
		Sources    []SearchSource
		MaxResults *int32
	}

	// ResponseFormatType selects the shape of the model output.
	ResponseFormatType string

	// ResponseFormat constrains the model output. Schema is only used with
	// ResponseFormatJSONSchema.
	ResponseFormat struct {
		Type   ResponseFormatType
		Schema json.RawMessage
	}

	// IncludeOption selects optional response fields.
	IncludeOption string

	// CompletionOptions is a reusable bundle of request settings applied to
	// many requests with ChatRequest.WithOptions.
	CompletionOptions struct {
		Model            string
		Temperature      *float32
		MaxTokens        *int32
		TopP             *float32
		FrequencyPenalty *float32
		PresencePenalty  *float32
		Stop             []string
		Tools            []Tool
		ToolChoice       *ToolChoice
		ResponseFormat   *ResponseFormat
	}
)

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

const (
	SearchModeOff  SearchMode = "off"
	SearchModeOn   SearchMode = "on"
	SearchModeAuto SearchMode = "auto"
)

const (
	SearchSourceWeb  SearchSource = "web"
	SearchSourceX    SearchSource = "x"
	SearchSourceNews SearchSource = "news"
)

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

const (
	IncludeWebSearchCallOutput         IncludeOption = "web_search_call_output"
	IncludeXSearchCallOutput           IncludeOption = "x_search_call_output"
	IncludeCodeExecutionCallOutput     IncludeOption = "code_execution_call_output"
	IncludeCollectionsSearchCallOutput IncludeOption = "collections_search_call_output"
	IncludeDocumentSearchCallOutput    IncludeOption = "document_search_call_output"
	IncludeMCPCallOutput               IncludeOption = "mcp_call_output"
	IncludeInlineCitations             IncludeOption = "inline_citations"
)

// NewChatRequest returns an empty request.
func NewChatRequest() *ChatRequest {
	return &ChatRequest{}
}

// AddMessage appends messages to the conversation.
func (r *ChatRequest) AddMessage(msgs ...Message) *ChatRequest {
	r.Messages = append(r.Messages, msgs...)
	return r
}

// SystemMessage appends a system message.
func (r *ChatRequest) SystemMessage(text string) *ChatRequest {
	return r.AddMessage(System(text))
}

// UserMessage appends a plain-text user message.
func (r *ChatRequest) UserMessage(text string) *ChatRequest {
	return r.AddMessage(User(text))
}

// UserMultimodal appends a multimodal user message.
func (r *ChatRequest) UserMultimodal(parts ...ContentPart) *ChatRequest {
	return r.AddMessage(UserParts(parts...))
}

// UserWithImage appends a user message made of text and one image.
func (r *ChatRequest) UserWithImage(text, imageURL string, detail ImageDetail) *ChatRequest {
	return r.UserMultimodal(TextPart{Text: text}, ImageURLPart{URL: imageURL, Detail: detail})
}

// UserWithFile appends a user message made of text and one uploaded file.
func (r *ChatRequest) UserWithFile(text, fileID string) *ChatRequest {
	return r.UserMultimodal(TextPart{Text: text}, FilePart{FileID: fileID})
}

// AssistantMessage appends a plain-text assistant message.
func (r *ChatRequest) AssistantMessage(text string) *ChatRequest {
	return r.AddMessage(Assistant(text))
}

// ToolResult appends the result of a client-side tool call.
func (r *ChatRequest) ToolResult(toolCallID, content string) *ChatRequest {
	return r.AddMessage(ToolResult(toolCallID, content))
}

// WithModel sets the model identifier.
func (r *ChatRequest) WithModel(model string) *ChatRequest {
	r.Model = model
	return r
}

// WithMaxTokens caps completion tokens.
func (r *ChatRequest) WithMaxTokens(n int32) *ChatRequest {
	r.MaxTokens = &n
	return r
}

// WithTemperature sets the sampling temperature.
func (r *ChatRequest) WithTemperature(t float32) *ChatRequest {
	r.Temperature = &t
	return r
}

// WithTopP sets nucleus sampling.
func (r *ChatRequest) WithTopP(p float32) *ChatRequest {
	r.TopP = &p
	return r
}

// WithFrequencyPenalty sets the frequency penalty.
func (r *ChatRequest) WithFrequencyPenalty(p float32) *ChatRequest {
	r.FrequencyPenalty = &p
	return r
}

// WithPresencePenalty sets the presence penalty.
func (r *ChatRequest) WithPresencePenalty(p float32) *ChatRequest {
	r.PresencePenalty = &p
	return r
}

// WithSeed sets the sampling seed.
func (r *ChatRequest) WithSeed(seed int32) *ChatRequest {
	r.Seed = &seed
	return r
}

// AddStop appends a stop sequence.
func (r *ChatRequest) AddStop(seq string) *ChatRequest {
	r.Stop = append(r.Stop, seq)
	return r
}

// WithReasoningEffort sets the reasoning effort hint.
func (r *ChatRequest) WithReasoningEffort(e ReasoningEffort) *ChatRequest {
	r.ReasoningEffort = e
	return r
}

// WithSearch enables live search.
func (r *ChatRequest) WithSearch(cfg SearchConfig) *ChatRequest {
	r.Search = &cfg
	return r
}

// WithWebSearch enables automatic web search.
func (r *ChatRequest) WithWebSearch() *ChatRequest {
	return r.WithSearch(SearchConfig{Mode: SearchModeAuto, Sources: []SearchSource{SearchSourceWeb}})
}

// WithJSONOutput requests any valid JSON object as output.
func (r *ChatRequest) WithJSONOutput() *ChatRequest {
	r.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSONObject}
	return r
}

// WithJSONSchema requests output conforming to schema.
func (r *ChatRequest) WithJSONSchema(schema json.RawMessage) *ChatRequest {
	r.ResponseFormat = &ResponseFormat{Type: ResponseFormatJSONSchema, Schema: schema}
	return r
}

// AddTool declares tools available to the model.
func (r *ChatRequest) AddTool(tools ...Tool) *ChatRequest {
	r.Tools = append(r.Tools, tools...)
	return r
}

// WithToolChoice constrains tool selection.
func (r *ChatRequest) WithToolChoice(c ToolChoice) *ChatRequest {
	r.ToolChoice = &c
	return r
}

// WithParallelToolCalls allows or forbids parallel tool calls.
func (r *ChatRequest) WithParallelToolCalls(enabled bool) *ChatRequest {
	r.ParallelToolCalls = &enabled
	return r
}

// WithMaxTurns bounds server-side agentic tool rounds. Values below 1 are
// rejected by Validate.
func (r *ChatRequest) WithMaxTurns(n int32) *ChatRequest {
	r.MaxTurns = &n
	return r
}

// WithUser sets the end-user identifier.
func (r *ChatRequest) WithUser(user string) *ChatRequest {
	r.User = user
	return r
}

// WithLogprobs requests token log probabilities, with up to top
// alternatives per position when top is positive.
func (r *ChatRequest) WithLogprobs(top int32) *ChatRequest {
	r.Logprobs = true
	if top > 0 {
		r.TopLogprobs = &top
	}
	return r
}

// WithPreviousResponseID continues a stored conversation.
func (r *ChatRequest) WithPreviousResponseID(id string) *ChatRequest {
	r.PreviousResponseID = id
	return r
}

// WithStoreMessages asks the service to store the completion.
func (r *ChatRequest) WithStoreMessages(store bool) *ChatRequest {
	r.StoreMessages = store
	return r
}

// WithEncryptedContent asks for encrypted reasoning content.
func (r *ChatRequest) WithEncryptedContent(enabled bool) *ChatRequest {
	r.UseEncryptedContent = enabled
	return r
}

// AddInclude appends optional response fields.
func (r *ChatRequest) AddInclude(opts ...IncludeOption) *ChatRequest {
	r.Include = append(r.Include, opts...)
	return r
}

// WithOptions applies the non-zero settings of opts.
func (r *ChatRequest) WithOptions(opts CompletionOptions) *ChatRequest {
	if opts.Model != "" {
		r.Model = opts.Model
	}
	if opts.Temperature != nil {
		r.Temperature = opts.Temperature
	}
	if opts.MaxTokens != nil {
		r.MaxTokens = opts.MaxTokens
	}
	if opts.TopP != nil {
		r.TopP = opts.TopP
	}
	if opts.FrequencyPenalty != nil {
		r.FrequencyPenalty = opts.FrequencyPenalty
	}
	if opts.PresencePenalty != nil {
		r.PresencePenalty = opts.PresencePenalty
	}
	if len(opts.Stop) > 0 {
		r.Stop = append(r.Stop, opts.Stop...)
	}
	if len(opts.Tools) > 0 {
		r.Tools = append(r.Tools, opts.Tools...)
	}
	if opts.ToolChoice != nil {
		r.ToolChoice = opts.ToolChoice
	}
	if opts.ResponseFormat != nil {
		r.ResponseFormat = opts.ResponseFormat
	}
	return r
}
