package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Message.
type Role string

const (
	// RoleUser is a message typed by the human.
	RoleUser Role = "user"
	// RoleAssistant is a model-generated reply.
	RoleAssistant Role = "assistant"
	// RoleTool is the result of a capability invocation.
	RoleTool Role = "tool"
	// RoleSystem is instruction context. System messages injected for a
	// single turn are ephemeral and must never be persisted.
	RoleSystem Role = "system"
)

// Message is the single conversation message format. Messages are immutable
// once appended to a thread; a turn only ever appends.
type Message struct {
	// ID is a unique identifier, generated on construction.
	ID string `json:"id"`

	// Role tags the message variant.
	Role Role `json:"role"`

	// Content is the textual body. For tool results this is the raw tool
	// output, which may be JSON.
	Content string `json:"content"`

	// ToolName names the capability that produced a tool result.
	ToolName string `json:"toolName,omitempty"`

	// ToolCallID correlates a tool result with the assistant call that
	// requested it.
	ToolCallID string `json:"toolCallId,omitempty"`

	// ToolCalls carries the capability invocations requested by an
	// assistant message.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`

	// Payload holds the structured form of a tool result when the tool
	// returned a JSON object. Directive extraction reads this before
	// falling back to Content.
	Payload map[string]any `json:"payload,omitempty"`

	// Timestamp is when the message was created, UTC.
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall is a single capability invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewMessage creates a message with a generated ID and timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolResult creates a tool-result message. If the result marshals to a
// JSON object it is recorded in both Content and Payload so that structured
// consumers never need to re-parse Content.
func NewToolResult(toolName, callID string, result any) Message {
	m := NewMessage(RoleTool, "")
	m.ToolName = toolName
	m.ToolCallID = callID

	switch v := result.(type) {
	case string:
		m.Content = v
		var obj map[string]any
		if err := json.Unmarshal([]byte(v), &obj); err == nil {
			m.Payload = obj
		}
	case map[string]any:
		m.Payload = v
		if data, err := json.Marshal(v); err == nil {
			m.Content = string(data)
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			m.Content = fmt.Sprintf("%v", v)
			return m
		}
		m.Content = string(data)
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err == nil {
			m.Payload = obj
		}
	}
	return m
}

// String returns a short debug representation.
func (m Message) String() string {
	return fmt.Sprintf("Message{ID:%s, Role:%s, Tool:%s}", m.ID, m.Role, m.ToolName)
}

// StripSystem returns msgs with every system-role message removed. The
// transactions role injects identity context as a system message for the
// duration of one invocation; the returned sequence must never contain it.
func StripSystem(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

// LastAssistant returns the newest assistant message, or false if none.
func LastAssistant(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAssistant {
			return msgs[i], true
		}
	}
	return Message{}, false
}
