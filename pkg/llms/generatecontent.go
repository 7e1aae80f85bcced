package llms

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnexpectedRole is returned when a message role is of an unexpected type.
var ErrUnexpectedRole = errors.New("unexpected role")

// Role is the type of chat message.
type Role string

const (
	// RoleSystem is a message sent by the system.
	RoleSystem Role = "system"
	// RoleUser is a message sent by the user.
	RoleUser Role = "user"
	// RoleAssistant is a message sent by the model.
	RoleAssistant Role = "assistant"
	// RoleTool is a message carrying a tool result.
	RoleTool Role = "tool"
)

// Message is one entry of a conversation transcript.
// The set of implementations is closed: SystemMessage, UserMessage,
// AssistantMessage and ToolResultMessage.
type Message interface {
	GetRole() Role
	GetContent() string
	isMessage()
}

// SystemMessage sets the behaviour of the assistant.
type SystemMessage struct {
	Content string
}

// UserMessage carries the caller's request.
type UserMessage struct {
	Content string
}

// AssistantMessage is one turn produced by the model.
// Empty Content means the model returned no text.
type AssistantMessage struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolResultMessage is the textual result of one ToolCall.
type ToolResultMessage struct {
	ToolCallID string
	ToolName   string
	Content    string
}

// ToolCall is a call to a tool (as requested by the model) that should be executed.
type ToolCall struct {
	// ID correlates the call with its ToolResultMessage.
	ID string `json:"id"`
	// Name is the name of the tool to call.
	Name string `json:"name"`
	// Arguments to pass to the tool, as a JSON string.
	Arguments string `json:"arguments"`
}

func (tc ToolCall) String() string {
	return fmt.Sprintf("ToolCall: %s (%s), input: %s", tc.ID, tc.Name, tc.Arguments)
}

func (SystemMessage) isMessage()     {}
func (UserMessage) isMessage()       {}
func (AssistantMessage) isMessage()  {}
func (ToolResultMessage) isMessage() {}

func (SystemMessage) GetRole() Role     { return RoleSystem }
func (UserMessage) GetRole() Role       { return RoleUser }
func (AssistantMessage) GetRole() Role  { return RoleAssistant }
func (ToolResultMessage) GetRole() Role { return RoleTool }

func (m SystemMessage) GetContent() string     { return m.Content }
func (m UserMessage) GetContent() string       { return m.Content }
func (m AssistantMessage) GetContent() string  { return m.Content }
func (m ToolResultMessage) GetContent() string { return m.Content }

// HasToolCalls returns true if the model requested tool execution.
func (m AssistantMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// messageJSON is the wire shape shared by all message variants.
type messageJSON struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

func (m SystemMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{Role: RoleSystem, Content: &m.Content})
}

func (m UserMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{Role: RoleUser, Content: &m.Content})
}

func (m AssistantMessage) MarshalJSON() ([]byte, error) {
	js := messageJSON{Role: RoleAssistant, ToolCalls: m.ToolCalls}
	if m.Content != "" {
		js.Content = &m.Content
	}
	return json.Marshal(js)
}

func (m ToolResultMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		Role:       RoleTool,
		Content:    &m.Content,
		ToolCallID: m.ToolCallID,
		Name:       m.ToolName,
	})
}

// UnmarshalMessage decodes a single role-tagged message.
func UnmarshalMessage(data []byte) (Message, error) {
	var js messageJSON
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal message")
	}
	content := ""
	if js.Content != nil {
		content = *js.Content
	}
	switch js.Role {
	case RoleSystem:
		return SystemMessage{Content: content}, nil
	case RoleUser:
		return UserMessage{Content: content}, nil
	case RoleAssistant:
		return AssistantMessage{Content: content, ToolCalls: js.ToolCalls}, nil
	case RoleTool:
		return ToolResultMessage{ToolCallID: js.ToolCallID, ToolName: js.Name, Content: content}, nil
	}
	return nil, errors.WithMessagef(ErrUnexpectedRole, "role %q", js.Role)
}

// ContentResponse is the response returned by a GenerateContent call.
// It can potentially return multiple content choices.
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice is one of the response choices returned by GenerateContent
// calls.
type ContentChoice struct {
	// Content is the textual content of a response
	Content string `json:"content"`

	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason"`

	// GenerationInfo is arbitrary information the model adds to the response.
	GenerationInfo map[string]any `json:"generation_info"`

	// ToolCalls is a list of tool calls the model asks to invoke.
	ToolCalls []ToolCall `json:"tool_calls"`
}

// AssistantMessage returns the first choice as an assistant turn.
func (r *ContentResponse) AssistantMessage() (AssistantMessage, error) {
	if r == nil || len(r.Choices) == 0 || r.Choices[0] == nil {
		return AssistantMessage{}, ErrEmptyResponse
	}
	c := r.Choices[0]
	return AssistantMessage{
		Content:   c.Content,
		ToolCalls: c.ToolCalls,
	}, nil
}
