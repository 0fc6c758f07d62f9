// Package events mirrors notable backend events onto NATS subjects for
// external observers. Publishing is best-effort and fully optional: with
// no NATS URL configured the publisher is a no-op.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/pkg/logger"
)

const (
	subjectToolExecuted    = "gaia.agent.tool_executed"
	subjectUploadConfirmed = "gaia.storage.upload_confirmed"
)

// Publisher publishes backend events to NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes the NATS connection. An empty URL yields a disabled
// publisher; all publish calls become no-ops.
func Connect(url string, log *logger.Logger) (*Publisher, error) {
	if url == "" {
		return &Publisher{logger: log}, nil
	}

	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Info("event publisher connected", zap.String("url", url))
	return &Publisher{conn: conn, logger: log}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

func (p *Publisher) publish(subject string, payload any) {
	if p == nil || p.conn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// ToolExecuted records a completed tool dispatch.
func (p *Publisher) ToolExecuted(tool, status string) {
	p.publish(subjectToolExecuted, map[string]string{
		"tool":   tool,
		"status": status,
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
}

// UploadConfirmed records a durable transaction id assignment.
func (p *Publisher) UploadConfirmed(receiptID, txID string) {
	p.publish(subjectUploadConfirmed, map[string]string{
		"receipt_id":    receiptID,
		"arweave_tx_id": txID,
		"at":            time.Now().UTC().Format(time.RFC3339),
	})
}
