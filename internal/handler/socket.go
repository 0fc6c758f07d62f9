package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/pkg/logger"
	"github.com/gaiachat/arweave-agent/pkg/metrics"
)

// ChatRelay is the plain chat surface the socket depends on.
type ChatRelay interface {
	Reply(ctx context.Context, history []model.ChatMessage, input string) (string, error)
}

// SocketHandler serves the bidirectional chat channel. The protocol
// assumes one outstanding exchange per connection: the client sends a
// chat_message frame and waits for gaia_response or error on the same
// connection.
type SocketHandler struct {
	relay    ChatRelay
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewSocketHandler creates a new socket handler.
func NewSocketHandler(relay ChatRelay, log *logger.Logger) *SocketHandler {
	return &SocketHandler{
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The demo page may be served from any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Serve handles GET /ws
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.IncrementSocketConnections()
	defer metrics.DecrementSocketConnections()

	h.logger.Info("client connected", zap.String("remote_addr", conn.RemoteAddr().String()))
	defer h.logger.Info("client disconnected", zap.String("remote_addr", conn.RemoteAddr().String()))

	for {
		var req model.SocketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		if req.Type != "chat_message" {
			h.writeFrame(conn, model.SocketResponse{Type: "error", Error: "unsupported message type: " + req.Type})
			continue
		}

		reply, err := h.relay.Reply(r.Context(), req.History, req.Input)
		if err != nil {
			h.logger.Error("chat relay failed", zap.Error(err))
			h.writeFrame(conn, model.SocketResponse{Type: "error", Error: err.Error()})
			continue
		}

		h.writeFrame(conn, model.SocketResponse{Type: "gaia_response", Data: reply})
	}
}

func (h *SocketHandler) writeFrame(conn *websocket.Conn, resp model.SocketResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
	}
}
