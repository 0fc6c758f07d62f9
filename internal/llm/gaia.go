package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/pkg/metrics"
)

// GaiaClient talks to a Gaia node's OpenAI-compatible completion API.
type GaiaClient struct {
	client       *openai.Client
	defaultModel string
}

// NewGaiaClient creates a client for the node at baseURL.
func NewGaiaClient(apiKey, baseURL, defaultModel string) (*GaiaClient, error) {
	if baseURL == "" {
		return nil, errors.New("Gaia node URL is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &GaiaClient{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}, nil
}

// Name returns the provider name.
func (c *GaiaClient) Name() string {
	return "gaia"
}

// Complete sends a completion request, attaching tool schemas when present.
func (c *GaiaClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	modelName := req.Model
	if modelName == "" {
		modelName = c.defaultModel
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    modelName,
		Messages: toOpenAIMessages(req.Messages),
	}

	if len(req.Tools) > 0 {
		chatReq.Tools = toOpenAITools(req.Tools)
		if req.ToolChoice != "" {
			chatReq.ToolChoice = req.ToolChoice
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		metrics.RecordCompletion(modelName, "error", time.Since(start).Seconds(), 0, 0)
		return nil, err
	}

	out := &CompletionResponse{
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		LatencyMs: time.Since(start).Milliseconds(),
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		out.Content = choice.Message.Content
		out.FinishReason = string(choice.FinishReason)
		for _, call := range choice.Message.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, model.ToolCallRequest{
				ID:           call.ID,
				Name:         call.Function.Name,
				RawArguments: call.Function.Arguments,
			})
		}
	}

	metrics.RecordCompletion(modelName, "success", time.Since(start).Seconds(), out.TokensIn, out.TokensOut)
	return out, nil
}

func toOpenAIMessages(messages []model.ChatMessage) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		converted[i] = openai.ChatCompletionMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			converted[i].ToolCalls = append(converted[i].ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.RawArguments,
				},
			})
		}
	}
	return converted
}

func toOpenAITools(defs []ToolDefinition) []openai.Tool {
	tools := make([]openai.Tool, len(defs))
	for i, def := range defs {
		tools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}
	return tools
}
