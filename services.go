package grok

import (
	"context"

	"github.com/grokrpc/grok-go/runtime/codec"
	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/stream"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// ListLanguageModels lists the chat models available to the key.
func (c *Client) ListLanguageModels(ctx context.Context) ([]*model.LanguageModel, error) {
	var wresp wire.ListLanguageModelsResponse
	if err := c.call(ctx, wire.MethodListLanguageModels, &wire.ListModelsRequest{}, &wresp, nil); err != nil {
		return nil, err
	}
	out := make([]*model.LanguageModel, 0, len(wresp.Models))
	for i := range wresp.Models {
		out = append(out, codec.DecodeLanguageModel(&wresp.Models[i]))
	}
	return out, nil
}

// GetLanguageModel returns the chat model with the given name or alias.
func (c *Client) GetLanguageModel(ctx context.Context, name string) (*model.LanguageModel, error) {
	if err := requireName(wire.MethodGetLanguageModel, name); err != nil {
		return nil, err
	}
	var wresp wire.LanguageModel
	if err := c.call(ctx, wire.MethodGetLanguageModel, &wire.GetModelRequest{Name: name}, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeLanguageModel(&wresp), nil
}

// ListEmbeddingModels lists the embedding models available to the key.
func (c *Client) ListEmbeddingModels(ctx context.Context) ([]*model.EmbeddingModel, error) {
	var wresp wire.ListEmbeddingModelsResponse
	if err := c.call(ctx, wire.MethodListEmbeddingModels, &wire.ListModelsRequest{}, &wresp, nil); err != nil {
		return nil, err
	}
	out := make([]*model.EmbeddingModel, 0, len(wresp.Models))
	for i := range wresp.Models {
		out = append(out, codec.DecodeEmbeddingModel(&wresp.Models[i]))
	}
	return out, nil
}

// GetEmbeddingModel returns the embedding model with the given name.
func (c *Client) GetEmbeddingModel(ctx context.Context, name string) (*model.EmbeddingModel, error) {
	if err := requireName(wire.MethodGetEmbeddingModel, name); err != nil {
		return nil, err
	}
	var wresp wire.EmbeddingModel
	if err := c.call(ctx, wire.MethodGetEmbeddingModel, &wire.GetModelRequest{Name: name}, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeEmbeddingModel(&wresp), nil
}

// ListImageGenerationModels lists the image models available to the key.
func (c *Client) ListImageGenerationModels(ctx context.Context) ([]*model.ImageGenerationModel, error) {
	var wresp wire.ListImageGenerationModelsResponse
	if err := c.call(ctx, wire.MethodListImageGenerationModels, &wire.ListModelsRequest{}, &wresp, nil); err != nil {
		return nil, err
	}
	out := make([]*model.ImageGenerationModel, 0, len(wresp.Models))
	for i := range wresp.Models {
		out = append(out, codec.DecodeImageGenerationModel(&wresp.Models[i]))
	}
	return out, nil
}

// GetImageGenerationModel returns the image model with the given name.
func (c *Client) GetImageGenerationModel(ctx context.Context, name string) (*model.ImageGenerationModel, error) {
	if err := requireName(wire.MethodGetImageGenerationModel, name); err != nil {
		return nil, err
	}
	var wresp wire.ImageGenerationModel
	if err := c.call(ctx, wire.MethodGetImageGenerationModel, &wire.GetModelRequest{Name: name}, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeImageGenerationModel(&wresp), nil
}

// GetAPIKeyInfo returns metadata about the key the client authenticates
// with.
func (c *Client) GetAPIKeyInfo(ctx context.Context) (*model.APIKeyInfo, error) {
	var wresp wire.APIKey
	if err := c.call(ctx, wire.MethodGetAPIKeyInfo, &wire.Empty{}, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeAPIKeyInfo(&wresp), nil
}

// Embed computes embeddings for the inputs of req.
func (c *Client) Embed(ctx context.Context, req *model.EmbedRequest) (*model.EmbedResponse, error) {
	wreq, err := codec.EncodeEmbedRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodEmbed), err)
	}
	var wresp wire.EmbedResponse
	if err := c.call(ctx, wire.MethodEmbed, wreq, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeEmbedResponse(&wresp), nil
}

// Tokenize splits text into the tokens of a model's tokenizer.
func (c *Client) Tokenize(ctx context.Context, req *model.TokenizeRequest) (*model.TokenizeResponse, error) {
	wreq, err := codec.EncodeTokenizeRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodTokenizeText), err)
	}
	var wresp wire.TokenizeTextResponse
	if err := c.call(ctx, wire.MethodTokenizeText, wreq, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeTokenizeResponse(&wresp), nil
}

// Sample runs a raw text completion.
func (c *Client) Sample(ctx context.Context, req *model.SampleRequest) (*model.SampleResponse, error) {
	wreq, err := codec.EncodeSampleRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodSampleText), err)
	}
	var wresp wire.SampleTextResponse
	if err := c.call(ctx, wire.MethodSampleText, wreq, &wresp, func() int32 { return totalTokens(wresp.Usage) }); err != nil {
		return nil, err
	}
	return codec.DecodeSampleResponse(&wresp), nil
}

// SampleStream runs a streaming raw text completion. The caller must Close
// the returned stream.
func (c *Client) SampleStream(ctx context.Context, req *model.SampleRequest) (*stream.SampleStream, error) {
	op := wire.ShortName(wire.MethodSampleTextStream)
	wreq, err := codec.EncodeSampleRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(op, err)
	}
	src, err := c.open(ctx, wire.MethodSampleTextStream, wreq)
	if err != nil {
		return nil, err
	}
	return stream.NewSampleStream(ctx, src, op), nil
}

// GenerateImage generates images from a prompt.
func (c *Client) GenerateImage(ctx context.Context, req *model.ImageRequest) (*model.ImageResponse, error) {
	wreq, err := codec.EncodeImageRequest(req, c.cfg.DefaultModel)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodGenerateImage), err)
	}
	var wresp wire.ImageResponse
	if err := c.call(ctx, wire.MethodGenerateImage, wreq, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeImageResponse(&wresp), nil
}

// SearchDocuments searches document collections.
func (c *Client) SearchDocuments(ctx context.Context, req *model.DocumentSearchRequest) (*model.DocumentSearchResponse, error) {
	wreq, err := codec.EncodeSearchRequest(req)
	if err != nil {
		return nil, fail(wire.ShortName(wire.MethodSearch), err)
	}
	var wresp wire.SearchResponse
	if err := c.call(ctx, wire.MethodSearch, wreq, &wresp, nil); err != nil {
		return nil, err
	}
	return codec.DecodeSearchResponse(&wresp), nil
}

func requireName(method, name string) error {
	if name == "" {
		return grokerr.InvalidRequest("model name is required").WithOperation(wire.ShortName(method))
	}
	return nil
}
