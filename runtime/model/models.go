package model

import (
	"slices"
	"time"
)

type (
	// Modality is an input or output kind supported by a model.
	Modality string

	// LanguageModel describes a chat model. Prices are integers in the
	// service's units: text and completion prices are 1/100 USD cents per
	// million tokens, the cached prompt price is USD cents per 100 million
	// tokens.
	LanguageModel struct {
		Name                     string
		Aliases                  []string
		Version                  string
		InputModalities          []Modality
		OutputModalities         []Modality
		PromptTextTokenPrice     int64
		PromptImageTokenPrice    int64
		CachedPromptTokenPrice   int64
		CompletionTextTokenPrice int64
		SearchPrice              int64
		MaxPromptLength          int32
		SystemFingerprint        string
		Created                  time.Time
	}

	// EmbeddingModel describes an embedding model. Prices are 1/100 USD
	// cents per million tokens.
	EmbeddingModel struct {
		Name                  string
		Aliases               []string
		Version               string
		InputModalities       []Modality
		OutputModalities      []Modality
		PromptTextTokenPrice  int64
		PromptImageTokenPrice int64
		SystemFingerprint     string
		Created               time.Time
	}

	// ImageGenerationModel describes an image generation model. ImagePrice is
	// in USD cents per image.
	ImageGenerationModel struct {
		Name              string
		Aliases           []string
		Version           string
		InputModalities   []Modality
		OutputModalities  []Modality
		ImagePrice        int64
		MaxPromptLength   int32
		SystemFingerprint string
		Created           time.Time
	}

	// APIKeyInfo is the metadata of the key used by the client.
	APIKeyInfo struct {
		RedactedAPIKey string
		APIKeyID       string
		UserID         string
		TeamID         string
		Name           string
		CreatedAt      time.Time
		ModifiedAt     time.Time
		ModifiedBy     string
		ACLs           []string
		APIKeyBlocked  bool
		TeamBlocked    bool
		Disabled       bool
	}
)

const (
	ModalityText      Modality = "text"
	ModalityImage     Modality = "image"
	ModalityEmbedding Modality = "embedding"
	// ModalityUnknown is reported for values this client does not know.
	ModalityUnknown Modality = "unknown"
)

const (
	// tokenPriceUnit converts token counts times 1/100-cent-per-million
	// prices into USD.
	tokenPriceUnit = 1_000_000 * 100
	// cachedPriceUnit converts cached token counts times
	// cent-per-100-million prices into USD.
	cachedPriceUnit = 100_000_000
)

// CalculateCost returns the USD cost of a completion with the given token
// counts.
func (m *LanguageModel) CalculateCost(promptTokens, completionTokens, cachedTokens uint32) float64 {
	prompt := float64(promptTokens) * float64(m.PromptTextTokenPrice) / tokenPriceUnit
	cached := float64(cachedTokens) * float64(m.CachedPromptTokenPrice) / cachedPriceUnit
	completion := float64(completionTokens) * float64(m.CompletionTextTokenPrice) / tokenPriceUnit
	return prompt + cached + completion
}

// CostOf returns the USD cost of the usage reported by a response.
func (m *LanguageModel) CostOf(u Usage) float64 {
	prompt := u.PromptTokens - u.CachedPromptTokens
	if prompt < 0 {
		prompt = 0
	}
	return m.CalculateCost(uint32(prompt), uint32(max(u.CompletionTokens, 0)), uint32(max(u.CachedPromptTokens, 0)))
}

// SupportsMultimodal reports whether the model accepts both text and images.
func (m *LanguageModel) SupportsMultimodal() bool {
	return slices.Contains(m.InputModalities, ModalityText) && slices.Contains(m.InputModalities, ModalityImage)
}

// Matches reports whether name is the model name or one of its aliases.
func (m *LanguageModel) Matches(name string) bool {
	return m.Name == name || slices.Contains(m.Aliases, name)
}

// IsActive reports whether the key can be used.
func (i *APIKeyInfo) IsActive() bool {
	return !i.APIKeyBlocked && !i.TeamBlocked && !i.Disabled
}

// Status returns a human-readable key status.
func (i *APIKeyInfo) Status() string {
	switch {
	case i.APIKeyBlocked:
		return "Blocked (Key)"
	case i.TeamBlocked:
		return "Blocked (Team)"
	case i.Disabled:
		return "Disabled"
	default:
		return "Active"
	}
}

// HasACL reports whether the key was granted acl.
func (i *APIKeyInfo) HasACL(acl string) bool {
	return slices.Contains(i.ACLs, acl)
}
