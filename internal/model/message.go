// Package model defines data structures shared across the agent backend.
package model

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage is a single entry in the model-facing conversation sequence.
// The sequence is append-only within a turn: system prompt, prior history,
// new user message, then any assistant/tool messages produced while
// resolving tool calls.
type ChatMessage struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	Name       string            `json:"name,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
}

// ToolCallRequest is a structured tool invocation emitted by the model.
// RawArguments is untrusted input and must be parsed before use.
type ToolCallRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RawArguments string `json:"arguments"`
}

// TurnContext carries the conversation state a tool may need to act on,
// such as reconstructing a transcript of the chat so far.
type TurnContext struct {
	History     []ChatMessage
	UserMessage string
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}
