// Package wire declares the messages exchanged with the xAI API services and
// the fully qualified RPC method names. Field names and enum numbers follow
// the xai_api protocol; values are carried by the codec registered in
// runtime/codec. Nothing outside runtime/codec and runtime/transport should
// depend on this package.
package wire

// Fully qualified RPC method names, grouped by service.
const (
	MethodGetCompletion           = "/xai_api.Chat/GetCompletion"
	MethodGetCompletionChunk      = "/xai_api.Chat/GetCompletionChunk"
	MethodStartDeferredCompletion = "/xai_api.Chat/StartDeferredCompletion"
	MethodGetDeferredCompletion   = "/xai_api.Chat/GetDeferredCompletion"
	MethodGetStoredCompletion     = "/xai_api.Chat/GetStoredCompletion"
	MethodDeleteStoredCompletion  = "/xai_api.Chat/DeleteStoredCompletion"

	MethodListLanguageModels        = "/xai_api.Models/ListLanguageModels"
	MethodGetLanguageModel          = "/xai_api.Models/GetLanguageModel"
	MethodListEmbeddingModels       = "/xai_api.Models/ListEmbeddingModels"
	MethodGetEmbeddingModel         = "/xai_api.Models/GetEmbeddingModel"
	MethodListImageGenerationModels = "/xai_api.Models/ListImageGenerationModels"
	MethodGetImageGenerationModel   = "/xai_api.Models/GetImageGenerationModel"

	MethodEmbed            = "/xai_api.Embedder/Embed"
	MethodTokenizeText     = "/xai_api.Tokenize/TokenizeText"
	MethodGetAPIKeyInfo    = "/xai_api.Auth/get_api_key_info"
	MethodSampleText       = "/xai_api.Sample/SampleText"
	MethodSampleTextStream = "/xai_api.Sample/SampleTextStreaming"
	MethodGenerateImage    = "/xai_api.Image/GenerateImage"
	MethodSearch           = "/xai_api.Documents/Search"
)

// ShortName returns the method name without its service prefix, for logs
// and span names.
func ShortName(method string) string {
	for i := len(method) - 1; i >= 0; i-- {
		if method[i] == '/' {
			return method[i+1:]
		}
	}
	return method
}
