// Package llm provides the chat-completion client abstraction.
package llm

import (
	"context"

	"github.com/gaiachat/arweave-agent/internal/model"
)

// ToolDefinition declares a tool the model may request: a name, a
// description, and a JSON schema for its arguments.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  any
}

// CompletionRequest represents a completion request. Tools is nil for
// plain completions; when set, ToolChoice controls selection ("auto"
// lets the model decide).
type CompletionRequest struct {
	Model      string
	Messages   []model.ChatMessage
	Tools      []ToolDefinition
	ToolChoice string
}

// CompletionResponse represents a completion response. ToolCalls is
// non-empty when the model requested tool invocations instead of (or in
// addition to) plain content.
type CompletionResponse struct {
	Content      string
	ToolCalls    []model.ToolCallRequest
	Model        string
	TokensIn     int
	TokensOut    int
	FinishReason string
	LatencyMs    int64
}

// Client is the interface for chat-completion providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string
}
