package service

import (
	"context"
	"fmt"

	"github.com/gaiachat/arweave-agent/internal/llm"
	"github.com/gaiachat/arweave-agent/internal/model"
)

const relaySystemPrompt = "You are a helpful assistant. Respond purely based on what you know. " +
	"Do not call or use any external tools or plugins in your response."

// ChatService is the tool-free, single-call path used by the plain chat
// surface.
type ChatService struct {
	llm   llm.Client
	model string
}

// NewChatService creates a chat relay.
func NewChatService(client llm.Client, modelName string) *ChatService {
	return &ChatService{llm: client, model: modelName}
}

// Reply sends one completion and returns its content verbatim. No tool
// schemas are attached and nothing is retried.
func (s *ChatService) Reply(ctx context.Context, history []model.ChatMessage, input string) (string, error) {
	messages := make([]model.ChatMessage, 0, len(history)+2)
	messages = append(messages, model.SystemMessage(relaySystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, model.UserMessage(input))

	resp, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return resp.Content, nil
}
