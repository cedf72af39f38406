package wire

import "google.golang.org/protobuf/types/known/timestamppb"

type (
	Empty struct{}

	ListModelsRequest struct{}

	GetModelRequest struct {
		Name string `json:"name"`
	}

	LanguageModel struct {
		Name                     string                 `json:"name"`
		Aliases                  []string               `json:"aliases,omitempty"`
		Version                  string                 `json:"version,omitempty"`
		InputModalities          []Modality             `json:"input_modalities,omitempty"`
		OutputModalities         []Modality             `json:"output_modalities,omitempty"`
		PromptTextTokenPrice     int64                  `json:"prompt_text_token_price,omitempty"`
		PromptImageTokenPrice    int64                  `json:"prompt_image_token_price,omitempty"`
		CachedPromptTokenPrice   int64                  `json:"cached_prompt_token_price,omitempty"`
		CompletionTextTokenPrice int64                  `json:"completion_text_token_price,omitempty"`
		SearchPrice              int64                  `json:"search_price,omitempty"`
		Created                  *timestamppb.Timestamp `json:"created,omitempty"`
		MaxPromptLength          int32                  `json:"max_prompt_length,omitempty"`
		SystemFingerprint        string                 `json:"system_fingerprint,omitempty"`
	}

	ListLanguageModelsResponse struct {
		Models []LanguageModel `json:"models"`
	}

	EmbeddingModel struct {
		Name                  string                 `json:"name"`
		Aliases               []string               `json:"aliases,omitempty"`
		Version               string                 `json:"version,omitempty"`
		InputModalities       []Modality             `json:"input_modalities,omitempty"`
		OutputModalities      []Modality             `json:"output_modalities,omitempty"`
		PromptTextTokenPrice  int64                  `json:"prompt_text_token_price,omitempty"`
		PromptImageTokenPrice int64                  `json:"prompt_image_token_price,omitempty"`
		Created               *timestamppb.Timestamp `json:"created,omitempty"`
		SystemFingerprint     string                 `json:"system_fingerprint,omitempty"`
	}

	ListEmbeddingModelsResponse struct {
		Models []EmbeddingModel `json:"models"`
	}

	ImageGenerationModel struct {
		Name              string                 `json:"name"`
		Aliases           []string               `json:"aliases,omitempty"`
		Version           string                 `json:"version,omitempty"`
		InputModalities   []Modality             `json:"input_modalities,omitempty"`
		OutputModalities  []Modality             `json:"output_modalities,omitempty"`
		ImagePrice        int64                  `json:"image_price,omitempty"`
		Created           *timestamppb.Timestamp `json:"created,omitempty"`
		MaxPromptLength   int32                  `json:"max_prompt_length,omitempty"`
		SystemFingerprint string                 `json:"system_fingerprint,omitempty"`
	}

	ListImageGenerationModelsResponse struct {
		Models []ImageGenerationModel `json:"models"`
	}

	// EmbedInput is one input. Exactly one field is set.
	EmbedInput struct {
		String   string           `json:"string,omitempty"`
		ImageURL *ImageURLContent `json:"image_url,omitempty"`
	}

	EmbedRequest struct {
		Input          []EmbedInput        `json:"input"`
		Model          string              `json:"model"`
		EncodingFormat EmbedEncodingFormat `json:"encoding_format,omitempty"`
		User           string              `json:"user,omitempty"`
	}

	FeatureVector struct {
		FloatArray  []float32 `json:"float_array,omitempty"`
		Base64Array string    `json:"base64_array,omitempty"`
	}

	Embedding struct {
		Index      int32           `json:"index"`
		Embeddings []FeatureVector `json:"embeddings,omitempty"`
	}

	EmbeddingUsage struct {
		NumTextEmbeddings  int32 `json:"num_text_embeddings,omitempty"`
		NumImageEmbeddings int32 `json:"num_image_embeddings,omitempty"`
	}

	EmbedResponse struct {
		ID                string          `json:"id"`
		Embeddings        []Embedding     `json:"embeddings,omitempty"`
		Usage             *EmbeddingUsage `json:"usage,omitempty"`
		Model             string          `json:"model,omitempty"`
		SystemFingerprint string          `json:"system_fingerprint,omitempty"`
	}

	TokenizeTextRequest struct {
		Text  string `json:"text"`
		Model string `json:"model"`
		User  string `json:"user,omitempty"`
	}

	Token struct {
		TokenID     uint32 `json:"token_id"`
		StringToken string `json:"string_token"`
		TokenBytes  []byte `json:"token_bytes,omitempty"`
	}

	TokenizeTextResponse struct {
		Tokens []Token `json:"tokens,omitempty"`
		Model  string  `json:"model,omitempty"`
	}

	APIKey struct {
		RedactedAPIKey string                 `json:"redacted_api_key"`
		UserID         string                 `json:"user_id,omitempty"`
		Name           string                 `json:"name,omitempty"`
		CreateTime     *timestamppb.Timestamp `json:"create_time,omitempty"`
		ModifyTime     *timestamppb.Timestamp `json:"modify_time,omitempty"`
		ModifiedBy     string                 `json:"modified_by,omitempty"`
		TeamID         string                 `json:"team_id,omitempty"`
		ACLs           []string               `json:"acls,omitempty"`
		APIKeyID       string                 `json:"api_key_id,omitempty"`
		APIKeyBlocked  bool                   `json:"api_key_blocked,omitempty"`
		TeamBlocked    bool                   `json:"team_blocked,omitempty"`
		Disabled       bool                   `json:"disabled,omitempty"`
	}

	SampleTextRequest struct {
		Prompt           []string `json:"prompt"`
		Model            string   `json:"model"`
		N                *int32   `json:"n,omitempty"`
		MaxTokens        *int32   `json:"max_tokens,omitempty"`
		Seed             *int32   `json:"seed,omitempty"`
		Stop             []string `json:"stop,omitempty"`
		Temperature      *float32 `json:"temperature,omitempty"`
		TopP             *float32 `json:"top_p,omitempty"`
		FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"`
		PresencePenalty  *float32 `json:"presence_penalty,omitempty"`
		Logprobs         bool     `json:"logprobs,omitempty"`
		TopLogprobs      *int32   `json:"top_logprobs,omitempty"`
		User             string   `json:"user,omitempty"`
	}

	SampleChoice struct {
		FinishReason FinishReason `json:"finish_reason,omitempty"`
		Index        int32        `json:"index,omitempty"`
		Text         string       `json:"text,omitempty"`
	}

	SampleTextResponse struct {
		ID                string                 `json:"id"`
		Choices           []SampleChoice         `json:"choices,omitempty"`
		Created           *timestamppb.Timestamp `json:"created,omitempty"`
		Model             string                 `json:"model,omitempty"`
		SystemFingerprint string                 `json:"system_fingerprint,omitempty"`
		Usage             *SamplingUsage         `json:"usage,omitempty"`
	}

	GenerateImageRequest struct {
		Prompt string           `json:"prompt"`
		Image  *ImageURLContent `json:"image,omitempty"`
		Model  string           `json:"model"`
		N      *int32           `json:"n,omitempty"`
		User   string           `json:"user,omitempty"`
		Format ImageFormat      `json:"format,omitempty"`
	}

	GeneratedImage struct {
		Base64            string `json:"base64,omitempty"`
		URL               string `json:"url,omitempty"`
		UpSampledPrompt   string `json:"up_sampled_prompt,omitempty"`
		RespectModeration bool   `json:"respect_moderation,omitempty"`
	}

	ImageResponse struct {
		Images []GeneratedImage `json:"images,omitempty"`
		Model  string           `json:"model,omitempty"`
	}

	DocumentsSource struct {
		CollectionIDs []string `json:"collection_ids"`
	}

	SearchRequest struct {
		Query         string           `json:"query"`
		Source        *DocumentsSource `json:"source,omitempty"`
		Limit         *int32           `json:"limit,omitempty"`
		RankingMetric RankingMetric    `json:"ranking_metric,omitempty"`
		Instructions  *string          `json:"instructions,omitempty"`
	}

	SearchMatch struct {
		FileID        string   `json:"file_id"`
		ChunkID       string   `json:"chunk_id"`
		ChunkContent  string   `json:"chunk_content,omitempty"`
		Score         float32  `json:"score"`
		CollectionIDs []string `json:"collection_ids,omitempty"`
	}

	SearchResponse struct {
		Matches []SearchMatch `json:"matches,omitempty"`
	}
)
