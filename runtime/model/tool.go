package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type (
	// Tool is a capability the model may invoke. Variants are FunctionTool,
	// WebSearchTool, XSearchTool, CodeExecutionTool, CollectionsSearchTool,
	// MCPTool and DocumentSearchTool. Only FunctionTool calls are executed by
	// the caller; the others run server-side.
	Tool interface {
		isTool()
	}

	// FunctionTool declares a client-side function. Parameters is a JSON
	// Schema object describing the arguments; nil means an empty object
	// schema.
	FunctionTool struct {
		Name        string
		Description string
		Parameters  json.RawMessage
	}

	// WebSearchTool lets the model search the web.
	WebSearchTool struct {
		ExcludedDomains          []string
		AllowedDomains           []string
		EnableImageUnderstanding *bool
	}

	// XSearchTool lets the model search posts on X.
	XSearchTool struct {
		FromDate                 *time.Time
		ToDate                   *time.Time
		AllowedXHandles          []string
		ExcludedXHandles         []string
		EnableImageUnderstanding *bool
		EnableVideoUnderstanding *bool
	}

	// CodeExecutionTool lets the model run code in a server-side sandbox.
	CodeExecutionTool struct{}

	// CollectionsSearchTool lets the model search document collections.
	CollectionsSearchTool struct {
		CollectionIDs []string
		Limit         *int32
	}

	// MCPTool connects the model to a remote MCP server.
	MCPTool struct {
		ServerLabel       string
		ServerDescription string
		ServerURL         string
		AllowedToolNames  []string
		Authorization     string
		ExtraHeaders      map[string]string
	}

	// DocumentSearchTool lets the model search documents attached to the
	// conversation.
	DocumentSearchTool struct {
		Limit *int32
	}

	// ToolChoiceMode selects how the model chooses tools.
	ToolChoiceMode string

	// ToolChoice constrains tool selection. Function is set only when Mode is
	// ToolChoiceModeFunction.
	ToolChoice struct {
		Mode     ToolChoiceMode
		Function string
	}

	// ToolCallKind identifies which tool family produced a tool call.
	ToolCallKind string

	// ToolCallStatus reports the progress of a server-side tool call.
	ToolCallStatus string

	// ToolCall is a tool invocation requested by the model.
	ToolCall struct {
		ID           string
		Kind         ToolCallKind
		Status       ToolCallStatus
		ErrorMessage string
		Function     FunctionCall
	}

	// FunctionCall names the function to invoke and carries its JSON-encoded
	// arguments.
	FunctionCall struct {
		Name      string
		Arguments string
	}
)

// DefaultFunctionParameters is the schema used when a FunctionTool declares
// no parameters.
var DefaultFunctionParameters = json.RawMessage(`{"type":"object","properties":{}}`)

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"
	ToolChoiceModeNone     ToolChoiceMode = "none"
	ToolChoiceModeRequired ToolChoiceMode = "required"
	ToolChoiceModeFunction ToolChoiceMode = "function"
)

var (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto = ToolChoice{Mode: ToolChoiceModeAuto}
	// ToolChoiceNone forbids tool calls.
	ToolChoiceNone = ToolChoice{Mode: ToolChoiceModeNone}
	// ToolChoiceRequired forces at least one tool call.
	ToolChoiceRequired = ToolChoice{Mode: ToolChoiceModeRequired}
)

const (
	ToolCallKindClientSide        ToolCallKind = "client_side"
	ToolCallKindWebSearch         ToolCallKind = "web_search"
	ToolCallKindXSearch           ToolCallKind = "x_search"
	ToolCallKindCodeExecution     ToolCallKind = "code_execution"
	ToolCallKindCollectionsSearch ToolCallKind = "collections_search"
	ToolCallKindMCP               ToolCallKind = "mcp"
	ToolCallKindDocumentSearch    ToolCallKind = "document_search"
	ToolCallKindUnknown           ToolCallKind = "unknown"
)

const (
	ToolCallStatusInProgress ToolCallStatus = "in_progress"
	ToolCallStatusCompleted  ToolCallStatus = "completed"
	ToolCallStatusIncomplete ToolCallStatus = "incomplete"
	ToolCallStatusFailed     ToolCallStatus = "failed"
	ToolCallStatusUnknown    ToolCallStatus = "unknown"
)

// Function returns a function tool with the given name and description and
// the default empty-object parameter schema.
func Function(name, description string) FunctionTool {
	return FunctionTool{Name: name, Description: description}
}

// WithParameters returns a copy of t using schema as its parameter schema.
func (t FunctionTool) WithParameters(schema json.RawMessage) FunctionTool {
	t.Parameters = schema
	return t
}

// Schema returns the parameter schema, substituting the default when unset.
func (t FunctionTool) Schema() json.RawMessage {
	if len(t.Parameters) == 0 {
		return DefaultFunctionParameters
	}
	return t.Parameters
}

// ToolChoiceFunction forces a call to the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{Mode: ToolChoiceModeFunction, Function: name}
}

func (FunctionTool) isTool()          {}
func (WebSearchTool) isTool()         {}
func (XSearchTool) isTool()           {}
func (CodeExecutionTool) isTool()     {}
func (CollectionsSearchTool) isTool() {}
func (MCPTool) isTool()               {}
func (DocumentSearchTool) isTool()    {}

// IsClientSide reports whether the caller is expected to execute the call
// and answer with a ToolMessage.
func (c ToolCall) IsClientSide() bool {
	return c.Kind == ToolCallKindClientSide
}

// ParseArguments decodes the JSON arguments into v.
func (f FunctionCall) ParseArguments(v any) error {
	if f.Arguments == "" {
		return fmt.Errorf("function %q: empty arguments", f.Name)
	}
	if err := json.Unmarshal([]byte(f.Arguments), v); err != nil {
		return fmt.Errorf("function %q: decode arguments: %w", f.Name, err)
	}
	return nil
}
