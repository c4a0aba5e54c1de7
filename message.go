package nimbus

import "strings"

// Role identifies the author class of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Status indicates whether a message is a final result or an intermediate one.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
)

// Part is a single piece of message content.
type Part interface {
	isPart()
}

// TextPart carries plain text content.
type TextPart struct {
	Text string
}

// DataPart carries inline binary content such as an image to be sent to a
// vision model. Bytes are transported base64-encoded by the providers.
type DataPart struct {
	Name     string
	MIMEType MIMEType
	Bytes    []byte
}

// ToolPart carries a single tool call requested by the model. Request holds
// the JSON-encoded arguments; Response is filled in after execution.
type ToolPart struct {
	ID       string
	Name     string
	Request  string
	Response string
}

func (TextPart) isPart() {}
func (DataPart) isPart() {}
func (ToolPart) isPart() {}

// Message is a single entry in a conversation.
type Message struct {
	Role         Role
	Author       string
	Status       Status
	FinishReason string
	Parts        []Part
}

// Text concatenates all text parts of the message.
func (m *Message) Text() string {
	var buf strings.Builder
	for _, part := range m.Parts {
		if v, ok := part.(TextPart); ok {
			buf.WriteString(v.Text)
		}
	}
	return buf.String()
}

// ToolCalls returns the tool parts of the message, if any.
func (m *Message) ToolCalls() []ToolPart {
	var calls []ToolPart
	for _, part := range m.Parts {
		if v, ok := part.(ToolPart); ok {
			calls = append(calls, v)
		}
	}
	return calls
}

// NewTextMessage creates a completed message with a single text part.
func NewTextMessage(role Role, text string) *Message {
	return &Message{
		Role:   role,
		Status: StatusCompleted,
		Parts:  []Part{TextPart{Text: text}},
	}
}

// SystemMessage creates a system message with the given text.
func SystemMessage(text string) *Message {
	return NewTextMessage(RoleSystem, text)
}

// UserMessage creates a user message with the given text.
func UserMessage(text string) *Message {
	return NewTextMessage(RoleUser, text)
}

// AssistantMessage creates an assistant message with the given text.
func AssistantMessage(text string) *Message {
	return NewTextMessage(RoleAssistant, text)
}

// UserDataMessage creates a user message carrying text plus inline binary
// content, e.g. a document image for extraction.
func UserDataMessage(text string, mime MIMEType, name string, data []byte) *Message {
	return &Message{
		Role:   RoleUser,
		Status: StatusCompleted,
		Parts: []Part{
			TextPart{Text: text},
			DataPart{Name: name, MIMEType: mime, Bytes: data},
		},
	}
}

// Prompt represents a sequence of messages exchanged between a user and an assistant.
type Prompt struct {
	Messages []*Message
}

// NewPrompt creates a new Prompt with the given messages.
func NewPrompt(messages ...*Message) *Prompt {
	return &Prompt{Messages: messages}
}

// String returns the string representation of the prompt by concatenating all message texts.
func (p *Prompt) String() string {
	var buf strings.Builder
	for _, msg := range p.Messages {
		buf.WriteString(msg.Text())
	}
	return buf.String()
}
