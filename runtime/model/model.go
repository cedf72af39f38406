// Package model defines the domain types exchanged with the Grok API:
// conversation messages, tools, chat requests and responses, streaming
// chunks, and the read-only discovery records returned by the models and
// auth services. Values carry no behavior beyond construction helpers and
// validation; translation to and from wire messages lives in runtime/codec.
//
// Polymorphic families (Message, MessageContent, ContentPart, Tool) are
// closed: each variant is a concrete type implementing an interface with an
// unexported marker method, so only this package can add variants and the
// codec can switch over them exhaustively.
package model

type (
	// Role identifies the author of a message.
	Role string

	// Message is one turn of a conversation. Variants are SystemMessage,
	// UserMessage, AssistantMessage and ToolMessage.
	Message interface {
		// Role returns the author role of the message.
		Role() Role
		isMessage()
	}

	// SystemMessage carries instructions that frame the conversation. System
	// messages must precede conversational turns.
	SystemMessage struct {
		Text string
	}

	// UserMessage carries end-user input, either plain text or an ordered set
	// of multimodal parts.
	UserMessage struct {
		Content MessageContent
	}

	// AssistantMessage replays a previous model turn. ToolCalls lists the tool
	// invocations the model requested in that turn, if any.
	AssistantMessage struct {
		Content   MessageContent
		ToolCalls []ToolCall
	}

	// ToolMessage returns the result of a client-side tool invocation to the
	// model. ToolCallID must match the ID of the ToolCall it answers.
	ToolMessage struct {
		ToolCallID string
		Content    string
	}

	// MessageContent is the body of a user or assistant message. Variants are
	// TextContent and PartsContent.
	MessageContent interface {
		isContent()
	}

	// TextContent is plain text content.
	TextContent string

	// PartsContent is an ordered sequence of multimodal content parts.
	PartsContent []ContentPart

	// ContentPart is one element of multimodal content. Variants are TextPart,
	// ImageURLPart and FilePart.
	ContentPart interface {
		isPart()
	}

	// TextPart is a text fragment of multimodal content.
	TextPart struct {
		Text string
	}

	// ImageURLPart references an image by URL or data URI. Detail selects the
	// resolution the model processes the image at; empty means auto.
	ImageURLPart struct {
		URL    string
		Detail ImageDetail
	}

	// FilePart references a previously uploaded file by ID.
	FilePart struct {
		FileID string
	}

	// ImageDetail controls image processing resolution.
	ImageDetail string
)

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

const (
	ImageDetailAuto ImageDetail = "auto"
	ImageDetailLow  ImageDetail = "low"
	ImageDetailHigh ImageDetail = "high"
)

// System returns a system message.
func System(text string) SystemMessage { return SystemMessage{Text: text} }

// User returns a plain-text user message.
func User(text string) UserMessage { return UserMessage{Content: TextContent(text)} }

// UserParts returns a multimodal user message.
func UserParts(parts ...ContentPart) UserMessage {
	return UserMessage{Content: PartsContent(parts)}
}

// Assistant returns a plain-text assistant message.
func Assistant(text string) AssistantMessage {
	return AssistantMessage{Content: TextContent(text)}
}

// ToolResult returns the message answering the tool call with the given ID.
func ToolResult(toolCallID, content string) ToolMessage {
	return ToolMessage{ToolCallID: toolCallID, Content: content}
}

// Image returns an image part with automatic detail.
func Image(url string) ImageURLPart { return ImageURLPart{URL: url, Detail: ImageDetailAuto} }

func (SystemMessage) Role() Role    { return RoleSystem }
func (UserMessage) Role() Role      { return RoleUser }
func (AssistantMessage) Role() Role { return RoleAssistant }
func (ToolMessage) Role() Role      { return RoleTool }

func (SystemMessage) isMessage()    {}
func (UserMessage) isMessage()      {}
func (AssistantMessage) isMessage() {}
func (ToolMessage) isMessage()      {}

func (TextContent) isContent()  {}
func (PartsContent) isContent() {}

func (TextPart) isPart()     {}
func (ImageURLPart) isPart() {}
func (FilePart) isPart()     {}

// Text returns the concatenated text of content, ignoring non-text parts.
func Text(c MessageContent) string {
	switch v := c.(type) {
	case TextContent:
		return string(v)
	case PartsContent:
		var out string
		for _, p := range v {
			if t, ok := p.(TextPart); ok {
				out += t.Text
			}
		}
		return out
	default:
		return ""
	}
}
