package wire

import "google.golang.org/protobuf/types/known/timestamppb"

type (
	// Content is one content element of a message. Exactly one field is set.
	Content struct {
		Text     string           `json:"text,omitempty"`
		ImageURL *ImageURLContent `json:"image_url,omitempty"`
		File     *FileContent     `json:"file,omitempty"`
	}

	ImageURLContent struct {
		ImageURL string      `json:"image_url"`
		Detail   ImageDetail `json:"detail,omitempty"`
	}

	FileContent struct {
		FileID string `json:"file_id"`
	}

	Message struct {
		Role             MessageRole `json:"role"`
		Content          []Content   `json:"content,omitempty"`
		ReasoningContent string      `json:"reasoning_content,omitempty"`
		EncryptedContent string      `json:"encrypted_content,omitempty"`
		ToolCalls        []ToolCall  `json:"tool_calls,omitempty"`
		ToolCallID       string      `json:"tool_call_id,omitempty"`
	}

	// Tool is a tool declaration. Exactly one field is set.
	Tool struct {
		Function          *Function          `json:"function,omitempty"`
		WebSearch         *WebSearch         `json:"web_search,omitempty"`
		XSearch           *XSearch           `json:"x_search,omitempty"`
		CodeExecution     *CodeExecution     `json:"code_execution,omitempty"`
		CollectionsSearch *CollectionsSearch `json:"collections_search,omitempty"`
		MCP               *MCP               `json:"mcp,omitempty"`
		DocumentSearch    *DocumentSearch    `json:"document_search,omitempty"`
	}

	Function struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Strict      bool   `json:"strict,omitempty"`
		// Parameters is the JSON Schema encoded as a string.
		Parameters string `json:"parameters"`
	}

	WebSearch struct {
		ExcludedDomains          []string `json:"excluded_domains,omitempty"`
		AllowedDomains           []string `json:"allowed_domains,omitempty"`
		EnableImageUnderstanding *bool    `json:"enable_image_understanding,omitempty"`
	}

	XSearch struct {
		FromDate                 *timestamppb.Timestamp `json:"from_date,omitempty"`
		ToDate                   *timestamppb.Timestamp `json:"to_date,omitempty"`
		AllowedXHandles          []string               `json:"allowed_x_handles,omitempty"`
		ExcludedXHandles         []string               `json:"excluded_x_handles,omitempty"`
		EnableImageUnderstanding *bool                  `json:"enable_image_understanding,omitempty"`
		EnableVideoUnderstanding *bool                  `json:"enable_video_understanding,omitempty"`
	}

	CodeExecution struct{}

	CollectionsSearch struct {
		CollectionIDs []string `json:"collection_ids"`
		Limit         *int32   `json:"limit,omitempty"`
	}

	MCP struct {
		ServerLabel       string            `json:"server_label,omitempty"`
		ServerDescription string            `json:"server_description,omitempty"`
		ServerURL         string            `json:"server_url"`
		AllowedToolNames  []string          `json:"allowed_tool_names,omitempty"`
		Authorization     *string           `json:"authorization,omitempty"`
		ExtraHeaders      map[string]string `json:"extra_headers,omitempty"`
	}

	DocumentSearch struct {
		Limit *int32 `json:"limit,omitempty"`
	}

	// ToolChoice is either a mode or a forced function name.
	ToolChoice struct {
		Mode         ToolMode `json:"mode,omitempty"`
		FunctionName string   `json:"function_name,omitempty"`
	}

	// ToolCall is a complete tool call in responses or a fragment in stream
	// deltas, where Index groups fragments of the same call.
	ToolCall struct {
		Index        int32          `json:"index,omitempty"`
		ID           string         `json:"id,omitempty"`
		Type         ToolCallType   `json:"type,omitempty"`
		Status       ToolCallStatus `json:"status,omitempty"`
		ErrorMessage string         `json:"error_message,omitempty"`
		Function     *FunctionCall  `json:"function,omitempty"`
	}

	FunctionCall struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	}

	SearchParameters struct {
		Mode             SearchMode `json:"mode"`
		Sources          []Source   `json:"sources,omitempty"`
		MaxSearchResults *int32     `json:"max_search_results,omitempty"`
	}

	// Source is a live search source. Exactly one field is set.
	Source struct {
		Web  *WebSource  `json:"web,omitempty"`
		X    *XSource    `json:"x,omitempty"`
		News *NewsSource `json:"news,omitempty"`
	}

	WebSource  struct{}
	XSource    struct{}
	NewsSource struct{}

	ResponseFormat struct {
		FormatType FormatType `json:"format_type"`
		Schema     *string    `json:"schema,omitempty"`
	}

	GetCompletionsRequest struct {
		Messages            []Message         `json:"messages"`
		Model               string            `json:"model"`
		User                string            `json:"user,omitempty"`
		N                   *int32            `json:"n,omitempty"`
		MaxTokens           *int32            `json:"max_tokens,omitempty"`
		Seed                *int32            `json:"seed,omitempty"`
		Stop                []string          `json:"stop,omitempty"`
		Temperature         *float32          `json:"temperature,omitempty"`
		TopP                *float32          `json:"top_p,omitempty"`
		Logprobs            bool              `json:"logprobs,omitempty"`
		TopLogprobs         *int32            `json:"top_logprobs,omitempty"`
		Tools               []Tool            `json:"tools,omitempty"`
		ToolChoice          *ToolChoice       `json:"tool_choice,omitempty"`
		ResponseFormat      *ResponseFormat   `json:"response_format,omitempty"`
		FrequencyPenalty    *float32          `json:"frequency_penalty,omitempty"`
		PresencePenalty     *float32          `json:"presence_penalty,omitempty"`
		ReasoningEffort     *ReasoningEffort  `json:"reasoning_effort,omitempty"`
		SearchParameters    *SearchParameters `json:"search_parameters,omitempty"`
		ParallelToolCalls   *bool             `json:"parallel_tool_calls,omitempty"`
		PreviousResponseID  *string           `json:"previous_response_id,omitempty"`
		StoreMessages       bool              `json:"store_messages,omitempty"`
		MaxTurns            *int32            `json:"max_turns,omitempty"`
		UseEncryptedContent bool              `json:"use_encrypted_content,omitempty"`
		Include             []IncludeOption   `json:"include,omitempty"`
	}

	SamplingUsage struct {
		CompletionTokens       int32 `json:"completion_tokens,omitempty"`
		ReasoningTokens        int32 `json:"reasoning_tokens,omitempty"`
		PromptTokens           int32 `json:"prompt_tokens,omitempty"`
		TotalTokens            int32 `json:"total_tokens,omitempty"`
		PromptTextTokens       int32 `json:"prompt_text_tokens,omitempty"`
		CachedPromptTextTokens int32 `json:"cached_prompt_text_tokens,omitempty"`
		PromptImageTokens      int32 `json:"prompt_image_tokens,omitempty"`
		NumSourcesUsed         int32 `json:"num_sources_used,omitempty"`
	}

	LogProbs struct {
		Content []LogProb `json:"content,omitempty"`
	}

	LogProb struct {
		Token       string       `json:"token"`
		Logprob     float32      `json:"logprob"`
		Bytes       []byte       `json:"bytes,omitempty"`
		TopLogprobs []TopLogProb `json:"top_logprobs,omitempty"`
	}

	TopLogProb struct {
		Token   string  `json:"token"`
		Logprob float32 `json:"logprob"`
		Bytes   []byte  `json:"bytes,omitempty"`
	}

	CompletionMessage struct {
		Content          string      `json:"content,omitempty"`
		ReasoningContent string      `json:"reasoning_content,omitempty"`
		EncryptedContent string      `json:"encrypted_content,omitempty"`
		Role             MessageRole `json:"role,omitempty"`
		ToolCalls        []ToolCall  `json:"tool_calls,omitempty"`
	}

	CompletionOutput struct {
		FinishReason FinishReason       `json:"finish_reason,omitempty"`
		Index        int32              `json:"index,omitempty"`
		Message      *CompletionMessage `json:"message,omitempty"`
		Logprobs     *LogProbs          `json:"logprobs,omitempty"`
	}

	GetChatCompletionResponse struct {
		ID                string                 `json:"id"`
		Outputs           []CompletionOutput     `json:"outputs,omitempty"`
		Created           *timestamppb.Timestamp `json:"created,omitempty"`
		Model             string                 `json:"model,omitempty"`
		SystemFingerprint string                 `json:"system_fingerprint,omitempty"`
		Usage             *SamplingUsage         `json:"usage,omitempty"`
		Citations         []string               `json:"citations,omitempty"`
	}

	Delta struct {
		Content          string      `json:"content,omitempty"`
		ReasoningContent string      `json:"reasoning_content,omitempty"`
		EncryptedContent string      `json:"encrypted_content,omitempty"`
		Role             MessageRole `json:"role,omitempty"`
		ToolCalls        []ToolCall  `json:"tool_calls,omitempty"`
	}

	CompletionOutputChunk struct {
		Delta        *Delta       `json:"delta,omitempty"`
		Logprobs     *LogProbs    `json:"logprobs,omitempty"`
		FinishReason FinishReason `json:"finish_reason,omitempty"`
		Index        int32        `json:"index,omitempty"`
	}

	GetChatCompletionChunk struct {
		ID                string                  `json:"id"`
		Outputs           []CompletionOutputChunk `json:"outputs,omitempty"`
		Created           *timestamppb.Timestamp  `json:"created,omitempty"`
		Model             string                  `json:"model,omitempty"`
		SystemFingerprint string                  `json:"system_fingerprint,omitempty"`
		Usage             *SamplingUsage          `json:"usage,omitempty"`
		Citations         []string                `json:"citations,omitempty"`
	}

	StartDeferredResponse struct {
		RequestID string `json:"request_id"`
	}

	GetDeferredRequest struct {
		RequestID string `json:"request_id"`
	}

	GetDeferredCompletionResponse struct {
		Status   DeferredStatus             `json:"status"`
		Response *GetChatCompletionResponse `json:"response,omitempty"`
	}

	GetStoredCompletionRequest struct {
		ResponseID string `json:"response_id"`
	}

	DeleteStoredCompletionRequest struct {
		ResponseID string `json:"response_id"`
	}

	DeleteStoredCompletionResponse struct {
		ResponseID string `json:"response_id"`
	}
)
