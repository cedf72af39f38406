package codec

import (
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// EncodeEmbedRequest validates req and translates it to an embed request.
func EncodeEmbedRequest(req *model.EmbedRequest, defaultModel string) (*wire.EmbedRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	modelName, err := ResolveModel(req.Model, defaultModel)
	if err != nil {
		return nil, err
	}
	out := &wire.EmbedRequest{
		Input:          make([]wire.EmbedInput, 0, len(req.Inputs)),
		Model:          modelName,
		EncodingFormat: wire.EncodingFloat,
		User:           req.User,
	}
	if req.EncodingFormat == model.EmbedEncodingBase64 {
		out.EncodingFormat = wire.EncodingBase64
	}
	for _, in := range req.Inputs {
		if in.Image != nil {
			out.Input = append(out.Input, wire.EmbedInput{ImageURL: encodeImageURL(*in.Image)})
			continue
		}
		out.Input = append(out.Input, wire.EmbedInput{String: in.Text})
	}
	return out, nil
}

// DecodeEmbedResponse translates an embed response.
func DecodeEmbedResponse(resp *wire.EmbedResponse) *model.EmbedResponse {
	if resp == nil {
		return &model.EmbedResponse{}
	}
	out := &model.EmbedResponse{
		ID:                resp.ID,
		Model:             resp.Model,
		SystemFingerprint: resp.SystemFingerprint,
		Embeddings:        make([]model.Embedding, 0, len(resp.Embeddings)),
	}
	if resp.Usage != nil {
		out.Usage = model.EmbeddingUsage{
			NumTextEmbeddings:  resp.Usage.NumTextEmbeddings,
			NumImageEmbeddings: resp.Usage.NumImageEmbeddings,
		}
	}
	for _, e := range resp.Embeddings {
		emb := model.Embedding{Index: int(e.Index)}
		if len(e.Embeddings) > 0 {
			emb.Vector = e.Embeddings[0].FloatArray
			emb.Base64 = e.Embeddings[0].Base64Array
		}
		out.Embeddings = append(out.Embeddings, emb)
	}
	return out
}

// EncodeTokenizeRequest validates req and translates it.
func EncodeTokenizeRequest(req *model.TokenizeRequest, defaultModel string) (*wire.TokenizeTextRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	modelName, err := ResolveModel(req.Model, defaultModel)
	if err != nil {
		return nil, err
	}
	return &wire.TokenizeTextRequest{Text: req.Text, Model: modelName, User: req.User}, nil
}

// DecodeTokenizeResponse translates a tokenize response.
func DecodeTokenizeResponse(resp *wire.TokenizeTextResponse) *model.TokenizeResponse {
	if resp == nil {
		return &model.TokenizeResponse{}
	}
	out := &model.TokenizeResponse{Model: resp.Model, Tokens: make([]model.Token, 0, len(resp.Tokens))}
	for _, t := range resp.Tokens {
		out.Tokens = append(out.Tokens, model.Token{ID: t.TokenID, String: t.StringToken, Bytes: t.TokenBytes})
	}
	return out
}

// EncodeSampleRequest validates req and translates it.
func EncodeSampleRequest(req *model.SampleRequest, defaultModel string) (*wire.SampleTextRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	modelName, err := ResolveModel(req.Model, defaultModel)
	if err != nil {
		return nil, err
	}
	return &wire.SampleTextRequest{
		Prompt:           req.Prompts,
		Model:            modelName,
		N:                req.N,
		MaxTokens:        req.MaxTokens,
		Seed:             req.Seed,
		Stop:             req.Stop,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Logprobs:         req.Logprobs,
		TopLogprobs:      req.TopLogprobs,
		User:             req.User,
	}, nil
}

// DecodeSampleResponse translates a sample response or streamed sample chunk.
func DecodeSampleResponse(resp *wire.SampleTextResponse) *model.SampleResponse {
	if resp == nil {
		return &model.SampleResponse{}
	}
	out := &model.SampleResponse{
		ID:                resp.ID,
		Model:             resp.Model,
		SystemFingerprint: resp.SystemFingerprint,
		Choices:           make([]model.SampleChoice, 0, len(resp.Choices)),
	}
	if resp.Usage != nil {
		out.TotalTokens = resp.Usage.TotalTokens
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, model.SampleChoice{
			Index:        c.Index,
			Text:         c.Text,
			FinishReason: DecodeSampleFinishReason(c.FinishReason),
		})
	}
	return out
}

// EncodeImageRequest validates req and translates it.
func EncodeImageRequest(req *model.ImageRequest, defaultModel string) (*wire.GenerateImageRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	modelName, err := ResolveModel(req.Model, defaultModel)
	if err != nil {
		return nil, err
	}
	out := &wire.GenerateImageRequest{
		Prompt: req.Prompt,
		Model:  modelName,
		N:      req.N,
		User:   req.User,
		Format: wire.ImageFormatURL,
	}
	if req.Format == model.ImageFormatBase64 {
		out.Format = wire.ImageFormatBase64
	}
	if req.ImageURL != "" {
		out.Image = &wire.ImageURLContent{ImageURL: req.ImageURL, Detail: wire.DetailAuto}
	}
	return out, nil
}

// DecodeImageResponse translates an image response.
func DecodeImageResponse(resp *wire.ImageResponse) *model.ImageResponse {
	if resp == nil {
		return &model.ImageResponse{}
	}
	out := &model.ImageResponse{Model: resp.Model, Images: make([]model.GeneratedImage, 0, len(resp.Images))}
	for _, img := range resp.Images {
		out.Images = append(out.Images, model.GeneratedImage{
			Base64:             img.Base64,
			URL:                img.URL,
			UpsampledPrompt:    img.UpSampledPrompt,
			RespectsModeration: img.RespectModeration,
		})
	}
	return out
}

// EncodeSearchRequest validates req and translates it.
func EncodeSearchRequest(req *model.DocumentSearchRequest) (*wire.SearchRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &wire.SearchRequest{
		Query:  req.Query,
		Source: &wire.DocumentsSource{CollectionIDs: req.CollectionIDs},
		Limit:  req.Limit,
	}
	switch req.RankingMetric {
	case model.RankingMetricL2Distance:
		out.RankingMetric = wire.RankingL2Distance
	case model.RankingMetricCosine:
		out.RankingMetric = wire.RankingCosineSimilarity
	}
	if req.Instructions != "" {
		instructions := req.Instructions
		out.Instructions = &instructions
	}
	return out, nil
}

// DecodeSearchResponse translates a document search response.
func DecodeSearchResponse(resp *wire.SearchResponse) *model.DocumentSearchResponse {
	if resp == nil {
		return &model.DocumentSearchResponse{}
	}
	out := &model.DocumentSearchResponse{Matches: make([]model.SearchMatch, 0, len(resp.Matches))}
	for _, m := range resp.Matches {
		out.Matches = append(out.Matches, model.SearchMatch{
			FileID:        m.FileID,
			ChunkID:       m.ChunkID,
			Content:       m.ChunkContent,
			Score:         m.Score,
			CollectionIDs: m.CollectionIDs,
		})
	}
	return out
}

// DecodeLanguageModel translates a language model record.
func DecodeLanguageModel(m *wire.LanguageModel) *model.LanguageModel {
	if m == nil {
		return &model.LanguageModel{}
	}
	return &model.LanguageModel{
		Name:                     m.Name,
		Aliases:                  m.Aliases,
		Version:                  m.Version,
		InputModalities:          decodeModalities(m.InputModalities),
		OutputModalities:         decodeModalities(m.OutputModalities),
		PromptTextTokenPrice:     m.PromptTextTokenPrice,
		PromptImageTokenPrice:    m.PromptImageTokenPrice,
		CachedPromptTokenPrice:   m.CachedPromptTokenPrice,
		CompletionTextTokenPrice: m.CompletionTextTokenPrice,
		SearchPrice:              m.SearchPrice,
		MaxPromptLength:          m.MaxPromptLength,
		SystemFingerprint:        m.SystemFingerprint,
		Created:                  decodeTime(m.Created),
	}
}

// DecodeEmbeddingModel translates an embedding model record.
func DecodeEmbeddingModel(m *wire.EmbeddingModel) *model.EmbeddingModel {
	if m == nil {
		return &model.EmbeddingModel{}
	}
	return &model.EmbeddingModel{
		Name:                  m.Name,
		Aliases:               m.Aliases,
		Version:               m.Version,
		InputModalities:       decodeModalities(m.InputModalities),
		OutputModalities:      decodeModalities(m.OutputModalities),
		PromptTextTokenPrice:  m.PromptTextTokenPrice,
		PromptImageTokenPrice: m.PromptImageTokenPrice,
		SystemFingerprint:     m.SystemFingerprint,
		Created:               decodeTime(m.Created),
	}
}

// DecodeImageGenerationModel translates an image generation model record.
func DecodeImageGenerationModel(m *wire.ImageGenerationModel) *model.ImageGenerationModel {
	if m == nil {
		return &model.ImageGenerationModel{}
	}
	return &model.ImageGenerationModel{
		Name:              m.Name,
		Aliases:           m.Aliases,
		Version:           m.Version,
		InputModalities:   decodeModalities(m.InputModalities),
		OutputModalities:  decodeModalities(m.OutputModalities),
		ImagePrice:        m.ImagePrice,
		MaxPromptLength:   m.MaxPromptLength,
		SystemFingerprint: m.SystemFingerprint,
		Created:           decodeTime(m.Created),
	}
}

// DecodeAPIKeyInfo translates API key metadata.
func DecodeAPIKeyInfo(k *wire.APIKey) *model.APIKeyInfo {
	if k == nil {
		return &model.APIKeyInfo{}
	}
	return &model.APIKeyInfo{
		RedactedAPIKey: k.RedactedAPIKey,
		APIKeyID:       k.APIKeyID,
		UserID:         k.UserID,
		TeamID:         k.TeamID,
		Name:           k.Name,
		CreatedAt:      decodeTime(k.CreateTime),
		ModifiedAt:     decodeTime(k.ModifyTime),
		ModifiedBy:     k.ModifiedBy,
		ACLs:           k.ACLs,
		APIKeyBlocked:  k.APIKeyBlocked,
		TeamBlocked:    k.TeamBlocked,
		Disabled:       k.Disabled,
	}
}

// DecodeModality maps a wire modality, returning ModalityUnknown for values
// outside the known set.
func DecodeModality(m wire.Modality) model.Modality {
	switch m {
	case wire.ModalityText:
		return model.ModalityText
	case wire.ModalityImage:
		return model.ModalityImage
	case wire.ModalityEmbedding:
		return model.ModalityEmbedding
	default:
		return model.ModalityUnknown
	}
}

func decodeModalities(in []wire.Modality) []model.Modality {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Modality, len(in))
	for i, m := range in {
		out[i] = DecodeModality(m)
	}
	return out
}
