package model

import "strings"

type (
	// EmbedRequest asks for vector embeddings of text or image inputs.
	EmbedRequest struct {
		Inputs         []EmbedInput
		Model          string
		EncodingFormat EmbedEncoding
		User           string
	}

	// EmbedInput is one input to embed: text, or an image URL when Image is
	// set.
	EmbedInput struct {
		Text  string
		Image *ImageURLPart
	}

	// EmbedEncoding selects how vectors are returned.
	EmbedEncoding string

	// EmbedResponse carries one embedding per input.
	EmbedResponse struct {
		ID                string
		Embeddings        []Embedding
		Usage             EmbeddingUsage
		Model             string
		SystemFingerprint string
	}

	// Embedding is the vector for the input at Index. Vector is set for
	// float encoding, Base64 for base64 encoding.
	Embedding struct {
		Index  int
		Vector []float32
		Base64 string
	}

	// EmbeddingUsage counts embedded inputs by kind.
	EmbeddingUsage struct {
		NumTextEmbeddings  int32
		NumImageEmbeddings int32
	}

	// TokenizeRequest asks the service to tokenize text with a model's
	// tokenizer.
	TokenizeRequest struct {
		Text  string
		Model string
		User  string
	}

	// Token is one token produced by the tokenizer.
	Token struct {
		ID     uint32
		String string
		Bytes  []byte
	}

	// TokenizeResponse lists the tokens of the input text.
	TokenizeResponse struct {
		Tokens []Token
		Model  string
	}

	// SampleRequest is a raw text completion request.
	SampleRequest struct {
		Prompts          []string
		Model            string
		N                *int32
		MaxTokens        *int32
		Seed             *int32
		Stop             []string
		Temperature      *float32
		TopP             *float32
		FrequencyPenalty *float32
		PresencePenalty  *float32
		Logprobs         bool
		TopLogprobs      *int32
		User             string
	}

	// SampleResponse carries the sampled choices.
	SampleResponse struct {
		ID                string
		Choices           []SampleChoice
		Model             string
		TotalTokens       int32
		SystemFingerprint string
	}

	// SampleChoice is one sampled completion.
	SampleChoice struct {
		Index        int32
		Text         string
		FinishReason FinishReason
	}

	// ImageRequest asks for generated images.
	ImageRequest struct {
		Prompt   string
		ImageURL string
		Model    string
		N        *int32
		User     string
		Format   ImageFormat
	}

	// ImageFormat selects how generated images are returned.
	ImageFormat string

	// ImageResponse carries the generated images.
	ImageResponse struct {
		Images []GeneratedImage
		Model  string
	}

	// GeneratedImage is one generated image, returned inline or by URL.
	GeneratedImage struct {
		Base64             string
		URL                string
		UpsampledPrompt    string
		RespectsModeration bool
	}

	// DocumentSearchRequest searches document collections.
	DocumentSearchRequest struct {
		Query         string
		CollectionIDs []string
		Limit         *int32
		RankingMetric RankingMetric
		Instructions  string
	}

	// RankingMetric selects the similarity metric used to rank matches.
	RankingMetric string

	// DocumentSearchResponse lists matching document chunks.
	DocumentSearchResponse struct {
		Matches []SearchMatch
	}

	// SearchMatch is one matching chunk.
	SearchMatch struct {
		FileID        string
		ChunkID       string
		Content       string
		Score         float32
		CollectionIDs []string
	}
)

const (
	EmbedEncodingFloat  EmbedEncoding = "float"
	EmbedEncodingBase64 EmbedEncoding = "base64"
)

const (
	ImageFormatBase64 ImageFormat = "base64"
	ImageFormatURL    ImageFormat = "url"
)

const (
	RankingMetricL2Distance RankingMetric = "l2_distance"
	RankingMetricCosine     RankingMetric = "cosine_similarity"
)

// NewEmbedRequest returns an embed request for model.
func NewEmbedRequest(model string) *EmbedRequest {
	return &EmbedRequest{Model: model, EncodingFormat: EmbedEncodingFloat}
}

// AddText appends a text input.
func (r *EmbedRequest) AddText(text string) *EmbedRequest {
	r.Inputs = append(r.Inputs, EmbedInput{Text: text})
	return r
}

// AddImage appends an image input.
func (r *EmbedRequest) AddImage(url string, detail ImageDetail) *EmbedRequest {
	r.Inputs = append(r.Inputs, EmbedInput{Image: &ImageURLPart{URL: url, Detail: detail}})
	return r
}

// TokenCount returns the number of tokens.
func (r *TokenizeResponse) TokenCount() int { return len(r.Tokens) }

// Text reassembles the tokenized text.
func (r *TokenizeResponse) Text() string {
	var b strings.Builder
	for _, t := range r.Tokens {
		b.WriteString(t.String)
	}
	return b.String()
}

// NewSampleRequest returns a sample request for model.
func NewSampleRequest(model string, prompts ...string) *SampleRequest {
	return &SampleRequest{Model: model, Prompts: prompts}
}

// NewImageRequest returns an image request for model.
func NewImageRequest(model, prompt string) *ImageRequest {
	return &ImageRequest{Model: model, Prompt: prompt, Format: ImageFormatURL}
}

// NewDocumentSearchRequest returns a search over the given collections
// ranked by cosine similarity.
func NewDocumentSearchRequest(query string, collectionIDs ...string) *DocumentSearchRequest {
	return &DocumentSearchRequest{Query: query, CollectionIDs: collectionIDs, RankingMetric: RankingMetricCosine}
}
