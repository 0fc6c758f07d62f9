// Package poller resolves a pending upload receipt into a durable
// transaction id by repeatedly querying the storage backend.
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/pkg/logger"
	"github.com/gaiachat/arweave-agent/pkg/metrics"
)

// StatusLookup is the single backend operation the poller depends on.
type StatusLookup interface {
	GetUploadByID(ctx context.Context, id string) (*model.UploadRecord, error)
}

// Outcome is the result of a confirmation run. Pending means the retry
// budget was exhausted before the network assigned a transaction id; the
// caller decides how to present "still processing".
type Outcome struct {
	TxID    string
	Pending bool
}

// Poller drives the confirmation retry protocol. Each Confirm call is
// independent and holds no state, so concurrent uploads are safe.
type Poller struct {
	lookup StatusLookup
	logger *logger.Logger

	// sleep is overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a poller over the given status lookup.
func New(lookup StatusLookup, log *logger.Logger) *Poller {
	return &Poller{
		lookup: lookup,
		logger: log,
		sleep:  sleepCtx,
	}
}

// Confirm polls the status lookup until a transaction id appears or the
// retry budget is exhausted. Exhaustion is not an error: the pending
// outcome is returned. A failed lookup attempt is treated as transient,
// logged, and does not abort the loop. The only error returned is context
// cancellation.
func (p *Poller) Confirm(ctx context.Context, receiptID string, maxAttempts int, delay time.Duration) (Outcome, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		metrics.ConfirmationAttemptsTotal.Inc()

		record, err := p.lookup.GetUploadByID(ctx, receiptID)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			p.logger.Warn("upload status lookup failed",
				zap.String("receipt_id", receiptID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else if record.ArweaveTxID != "" {
			p.logger.Info("upload confirmed",
				zap.String("receipt_id", receiptID),
				zap.String("arweave_tx_id", record.ArweaveTxID),
				zap.Int("attempt", attempt),
			)
			metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
			return Outcome{TxID: record.ArweaveTxID}, nil
		} else {
			p.logger.Debug("transaction id not assigned yet",
				zap.String("receipt_id", receiptID),
				zap.String("status", record.Status),
				zap.Int("attempt", attempt),
			)
		}

		if attempt < maxAttempts {
			if err := p.sleep(ctx, delay); err != nil {
				return Outcome{}, err
			}
		}
	}

	p.logger.Warn("transaction id still pending after retry budget",
		zap.String("receipt_id", receiptID),
		zap.Int("attempts", maxAttempts),
	)
	metrics.ConfirmationsTotal.WithLabelValues("pending").Inc()
	return Outcome{Pending: true}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
