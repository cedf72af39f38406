// Package codec translates between the domain types of runtime/model and the
// wire messages of runtime/wire. Encoders validate their input first and are
// total over valid requests. Decoders never fail on absent optional fields:
// they substitute zero values and map unrecognized enum numbers to the
// explicit Unknown variants of the domain enums.
package codec

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/wire"
)

// ResolveModel returns requested when set and fallback otherwise. It fails
// when both are empty.
func ResolveModel(requested, fallback string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", grokerr.InvalidRequest("model is required")
}

// EncodeChatRequest validates req and translates it to a completion request.
// defaultModel is used when req does not name a model.
func EncodeChatRequest(req *model.ChatRequest, defaultModel string) (*wire.GetCompletionsRequest, error) {
	if req == nil {
		return nil, grokerr.InvalidRequest("chat request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	modelName, err := ResolveModel(req.Model, defaultModel)
	if err != nil {
		return nil, err
	}

	out := &wire.GetCompletionsRequest{
		Messages:            make([]wire.Message, 0, len(req.Messages)),
		Model:               modelName,
		User:                req.User,
		MaxTokens:           req.MaxTokens,
		Seed:                req.Seed,
		Stop:                req.Stop,
		Temperature:         req.Temperature,
		TopP:                req.TopP,
		Logprobs:            req.Logprobs,
		TopLogprobs:         req.TopLogprobs,
		FrequencyPenalty:    req.FrequencyPenalty,
		PresencePenalty:     req.PresencePenalty,
		ParallelToolCalls:   req.ParallelToolCalls,
		StoreMessages:       req.StoreMessages,
		MaxTurns:            req.MaxTurns,
		UseEncryptedContent: req.UseEncryptedContent,
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, encodeMessage(m))
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, encodeTool(t))
	}
	if req.ToolChoice != nil {
		out.ToolChoice = encodeToolChoice(*req.ToolChoice)
	}
	if req.ResponseFormat != nil {
		out.ResponseFormat = encodeResponseFormat(*req.ResponseFormat)
	}
	if req.ReasoningEffort != "" {
		effort := encodeReasoningEffort(req.ReasoningEffort)
		out.ReasoningEffort = &effort
	}
	if req.Search != nil {
		out.SearchParameters = encodeSearch(*req.Search)
	}
	if req.PreviousResponseID != "" {
		id := req.PreviousResponseID
		out.PreviousResponseID = &id
	}
	for _, inc := range req.Include {
		if v := encodeInclude(inc); v != wire.IncludeInvalid {
			out.Include = append(out.Include, v)
		}
	}
	return out, nil
}

func encodeMessage(m model.Message) wire.Message {
	switch v := m.(type) {
	case model.SystemMessage:
		return wire.Message{Role: wire.RoleSystem, Content: []wire.Content{{Text: v.Text}}}
	case model.UserMessage:
		return wire.Message{Role: wire.RoleUser, Content: encodeContent(v.Content)}
	case model.AssistantMessage:
		out := wire.Message{Role: wire.RoleAssistant, Content: encodeContent(v.Content)}
		for _, tc := range v.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, encodeToolCall(tc))
		}
		return out
	case model.ToolMessage:
		return wire.Message{
			Role:       wire.RoleTool,
			Content:    []wire.Content{{Text: v.Content}},
			ToolCallID: v.ToolCallID,
		}
	default:
		return wire.Message{Role: wire.RoleInvalid}
	}
}

func encodeContent(c model.MessageContent) []wire.Content {
	switch v := c.(type) {
	case model.TextContent:
		return []wire.Content{{Text: string(v)}}
	case model.PartsContent:
		out := make([]wire.Content, 0, len(v))
		for _, p := range v {
			switch part := p.(type) {
			case model.TextPart:
				out = append(out, wire.Content{Text: part.Text})
			case model.ImageURLPart:
				out = append(out, wire.Content{ImageURL: encodeImageURL(part)})
			case model.FilePart:
				out = append(out, wire.Content{File: &wire.FileContent{FileID: part.FileID}})
			}
		}
		return out
	default:
		return nil
	}
}

func encodeImageURL(p model.ImageURLPart) *wire.ImageURLContent {
	return &wire.ImageURLContent{ImageURL: p.URL, Detail: encodeImageDetail(p.Detail)}
}

func encodeImageDetail(d model.ImageDetail) wire.ImageDetail {
	switch d {
	case model.ImageDetailLow:
		return wire.DetailLow
	case model.ImageDetailHigh:
		return wire.DetailHigh
	default:
		return wire.DetailAuto
	}
}

func encodeToolCall(tc model.ToolCall) wire.ToolCall {
	return wire.ToolCall{
		ID:           tc.ID,
		Type:         encodeToolCallKind(tc.Kind),
		Status:       encodeToolCallStatus(tc.Status),
		ErrorMessage: tc.ErrorMessage,
		Function:     &wire.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
	}
}

func encodeToolCallKind(k model.ToolCallKind) wire.ToolCallType {
	switch k {
	case model.ToolCallKindClientSide:
		return wire.ToolCallTypeClientSide
	case model.ToolCallKindWebSearch:
		return wire.ToolCallTypeWebSearch
	case model.ToolCallKindXSearch:
		return wire.ToolCallTypeXSearch
	case model.ToolCallKindCodeExecution:
		return wire.ToolCallTypeCodeExecution
	case model.ToolCallKindCollectionsSearch:
		return wire.ToolCallTypeCollectionsSearch
	case model.ToolCallKindMCP:
		return wire.ToolCallTypeMCP
	case model.ToolCallKindDocumentSearch:
		return wire.ToolCallTypeDocumentSearch
	default:
		return wire.ToolCallTypeInvalid
	}
}

func encodeToolCallStatus(s model.ToolCallStatus) wire.ToolCallStatus {
	switch s {
	case model.ToolCallStatusCompleted:
		return wire.ToolCallStatusCompleted
	case model.ToolCallStatusIncomplete:
		return wire.ToolCallStatusIncomplete
	case model.ToolCallStatusFailed:
		return wire.ToolCallStatusFailed
	default:
		return wire.ToolCallStatusInProgress
	}
}

func encodeTool(t model.Tool) wire.Tool {
	switch v := t.(type) {
	case model.FunctionTool:
		return wire.Tool{Function: &wire.Function{
			Name:        v.Name,
			Description: v.Description,
			Parameters:  string(v.Schema()),
		}}
	case model.WebSearchTool:
		return wire.Tool{WebSearch: &wire.WebSearch{
			ExcludedDomains:          v.ExcludedDomains,
			AllowedDomains:           v.AllowedDomains,
			EnableImageUnderstanding: v.EnableImageUnderstanding,
		}}
	case model.XSearchTool:
		return wire.Tool{XSearch: &wire.XSearch{
			FromDate:                 encodeTime(v.FromDate),
			ToDate:                   encodeTime(v.ToDate),
			AllowedXHandles:          v.AllowedXHandles,
			ExcludedXHandles:         v.ExcludedXHandles,
			EnableImageUnderstanding: v.EnableImageUnderstanding,
			EnableVideoUnderstanding: v.EnableVideoUnderstanding,
		}}
	case model.CodeExecutionTool:
		return wire.Tool{CodeExecution: &wire.CodeExecution{}}
	case model.CollectionsSearchTool:
		return wire.Tool{CollectionsSearch: &wire.CollectionsSearch{
			CollectionIDs: v.CollectionIDs,
			Limit:         v.Limit,
		}}
	case model.MCPTool:
		mcp := &wire.MCP{
			ServerLabel:       v.ServerLabel,
			ServerDescription: v.ServerDescription,
			ServerURL:         v.ServerURL,
			AllowedToolNames:  v.AllowedToolNames,
			ExtraHeaders:      v.ExtraHeaders,
		}
		if v.Authorization != "" {
			auth := v.Authorization
			mcp.Authorization = &auth
		}
		return wire.Tool{MCP: mcp}
	case model.DocumentSearchTool:
		return wire.Tool{DocumentSearch: &wire.DocumentSearch{Limit: v.Limit}}
	default:
		return wire.Tool{}
	}
}

func encodeTime(t *time.Time) *timestamppb.Timestamp {
	if t == nil || t.IsZero() {
		return nil
	}
	return timestamppb.New(*t)
}

func encodeToolChoice(c model.ToolChoice) *wire.ToolChoice {
	switch c.Mode {
	case model.ToolChoiceModeNone:
		return &wire.ToolChoice{Mode: wire.ToolModeNone}
	case model.ToolChoiceModeRequired:
		return &wire.ToolChoice{Mode: wire.ToolModeRequired}
	case model.ToolChoiceModeFunction:
		return &wire.ToolChoice{FunctionName: c.Function}
	default:
		return &wire.ToolChoice{Mode: wire.ToolModeAuto}
	}
}

func encodeResponseFormat(f model.ResponseFormat) *wire.ResponseFormat {
	switch f.Type {
	case model.ResponseFormatJSONObject:
		return &wire.ResponseFormat{FormatType: wire.FormatTypeJSONObject}
	case model.ResponseFormatJSONSchema:
		schema := string(f.Schema)
		return &wire.ResponseFormat{FormatType: wire.FormatTypeJSONSchema, Schema: &schema}
	default:
		return &wire.ResponseFormat{FormatType: wire.FormatTypeText}
	}
}

func encodeReasoningEffort(e model.ReasoningEffort) wire.ReasoningEffort {
	switch e {
	case model.ReasoningEffortLow:
		return wire.EffortLow
	case model.ReasoningEffortMedium:
		return wire.EffortMedium
	case model.ReasoningEffortHigh:
		return wire.EffortHigh
	default:
		return wire.EffortInvalid
	}
}

func encodeSearch(s model.SearchConfig) *wire.SearchParameters {
	out := &wire.SearchParameters{MaxSearchResults: s.MaxResults}
	switch s.Mode {
	case model.SearchModeOn:
		out.Mode = wire.SearchModeOn
	case model.SearchModeAuto:
		out.Mode = wire.SearchModeAuto
	default:
		out.Mode = wire.SearchModeOff
	}
	for _, src := range s.Sources {
		switch src {
		case model.SearchSourceWeb:
			out.Sources = append(out.Sources, wire.Source{Web: &wire.WebSource{}})
		case model.SearchSourceX:
			out.Sources = append(out.Sources, wire.Source{X: &wire.XSource{}})
		case model.SearchSourceNews:
			out.Sources = append(out.Sources, wire.Source{News: &wire.NewsSource{}})
		}
	}
	return out
}

func encodeInclude(o model.IncludeOption) wire.IncludeOption {
	switch o {
	case model.IncludeWebSearchCallOutput:
		return wire.IncludeWebSearchCallOutput
	case model.IncludeXSearchCallOutput:
		return wire.IncludeXSearchCallOutput
	case model.IncludeCodeExecutionCallOutput:
		return wire.IncludeCodeExecutionCallOutput
	case model.IncludeCollectionsSearchCallOutput:
		return wire.IncludeCollectionsSearchOutput
	case model.IncludeDocumentSearchCallOutput:
		return wire.IncludeDocumentSearchCallOutput
	case model.IncludeMCPCallOutput:
		return wire.IncludeMCPCallOutput
	case model.IncludeInlineCitations:
		return wire.IncludeInlineCitations
	default:
		return wire.IncludeInvalid
	}
}
