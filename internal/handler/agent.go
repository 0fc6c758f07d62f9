package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/pkg/logger"
)

// AgentRunner is the orchestration surface the handler depends on.
type AgentRunner interface {
	RunTurn(ctx context.Context, message string, history []model.ChatMessage) (*model.AgentChatResponse, error)
}

// AgentHandler handles the agent chat endpoints.
type AgentHandler struct {
	agent     AgentRunner
	staticDir string
	logger    *logger.Logger
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(agent AgentRunner, staticDir string, log *logger.Logger) *AgentHandler {
	return &AgentHandler{agent: agent, staticDir: staticDir, logger: log}
}

// Chat handles POST /agent-chat
func (h *AgentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.AgentChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := h.agent.RunTurn(r.Context(), req.Message, req.History)
	if err != nil {
		h.logger.Error("agent turn failed", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to process agent request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Demo handles GET /agent-demo
func (h *AgentHandler) Demo(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, "agent-demo.html"))
}
