// Package service provides business logic for the agent backend.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/llm"
	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/internal/tools"
	"github.com/gaiachat/arweave-agent/pkg/logger"
)

const agentSystemPrompt = `You are a helpful AI assistant integrated with Arweave storage tools.
You can perform actions like storing data or retrieving lists of items.
When a user asks you to do something related to Arweave storage, use the appropriate tool.
Always respond in a helpful and informative way.
If a tool provides a link, make sure to include it in your final response.
If a tool operation fails, explain the error to the user.`

// ToolDispatcher executes a single tool call against the storage backend.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call model.ToolCallRequest, turn model.TurnContext) model.ToolExecution
}

// AgentService runs the two-phase tool-calling turn protocol.
type AgentService struct {
	llm        llm.Client
	dispatcher ToolDispatcher
	model      string
	logger     *logger.Logger
}

// NewAgentService creates an agent service.
func NewAgentService(client llm.Client, dispatcher ToolDispatcher, modelName string, log *logger.Logger) *AgentService {
	return &AgentService{
		llm:        client,
		dispatcher: dispatcher,
		model:      modelName,
		logger:     log,
	}
}

// RunTurn executes one user turn: a first model call with the full tool
// catalogue attached, sequential dispatch of any requested tool calls in
// the order the model emitted them, and, when tools ran, a second
// tool-free call whose content becomes the final answer. A failing tool
// contributes an error result but never aborts the turn; only a failed
// model call does.
func (s *AgentService) RunTurn(ctx context.Context, message string, history []model.ChatMessage) (*model.AgentChatResponse, error) {
	messages := make([]model.ChatMessage, 0, len(history)+2)
	messages = append(messages, model.SystemMessage(agentSystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, model.UserMessage(message))

	first, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Model:      s.model,
		Messages:   messages,
		Tools:      tools.Catalogue(),
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("agent model call failed: %w", err)
	}

	resp := &model.AgentChatResponse{
		FinalResponse: first.Content,
		ToolCalls:     first.ToolCalls,
		ToolResults:   []model.ToolExecution{},
	}
	if resp.FinalResponse == "" {
		resp.FinalResponse = "Agent performed actions."
	}
	if resp.ToolCalls == nil {
		resp.ToolCalls = []model.ToolCallRequest{}
	}

	if len(first.ToolCalls) == 0 {
		return resp, nil
	}

	// Fold the assistant's tool-call message into the running context, then
	// one tool-role message per request, keyed by the request id and in
	// request order so the model can attribute results.
	messages = append(messages, model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})

	turn := model.TurnContext{History: history, UserMessage: message}

	for _, call := range first.ToolCalls {
		s.logger.Info("executing tool",
			zap.String("tool", call.Name),
			zap.String("call_id", call.ID),
		)

		exec := s.dispatcher.Dispatch(ctx, call, turn)
		resp.ToolResults = append(resp.ToolResults, exec)

		messages = append(messages, model.ChatMessage{
			Role:       model.RoleTool,
			Name:       call.Name,
			Content:    serializeResult(exec),
			ToolCallID: call.ID,
		})
	}

	second, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("agent follow-up call failed: %w", err)
	}

	resp.FinalResponse = second.Content
	return resp, nil
}

// serializeResult produces the tool message body the model sees: the
// result document on success, or {"error": ...} on failure.
func serializeResult(exec model.ToolExecution) string {
	var payload any = exec.Result
	if exec.Result == nil {
		payload = map[string]string{"error": exec.Error}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"failed to serialize tool result"}`
	}
	return string(data)
}
