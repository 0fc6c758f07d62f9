package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/events"
	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/internal/poller"
	"github.com/gaiachat/arweave-agent/pkg/logger"
	"github.com/gaiachat/arweave-agent/pkg/metrics"
)

// Storage backend operations the dispatcher needs.
type Backend interface {
	QuickUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadReceipt, error)
	GetUploads(ctx context.Context, page, limit int) ([]model.UploadRecord, error)
	GetUser(ctx context.Context) (*model.AccountProfile, error)
}

// Confirmer resolves a receipt into a durable transaction id.
type Confirmer interface {
	Confirm(ctx context.Context, receiptID string, maxAttempts int, delay time.Duration) (poller.Outcome, error)
}

// Confirmation budget for uploads performed inside agent tools. Shorter
// than the foreground upload endpoint's budget: the model's second pass
// can report "pending" and the user can check back.
const (
	toolConfirmAttempts = 5
	toolConfirmDelay    = 2 * time.Second
)

// Listing page size used when scanning for a receipt.
const statusScanPageSize = 20

// Config holds the environment the tools act in.
type Config struct {
	GaiaNodeURL string
	GaiaModel   string
	GatewayURL  string
	TokenSymbol string
}

// Dispatcher validates and executes tool calls against the storage backend.
type Dispatcher struct {
	backend   Backend
	confirmer Confirmer
	httpc     *http.Client
	cfg       Config
	events    *events.Publisher
	logger    *logger.Logger
}

// NewDispatcher creates a dispatcher over the given backend.
func NewDispatcher(backend Backend, confirmer Confirmer, cfg Config, pub *events.Publisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		backend:   backend,
		confirmer: confirmer,
		httpc:     &http.Client{Timeout: 15 * time.Second},
		cfg:       cfg,
		events:    pub,
		logger:    log,
	}
}

// Dispatch resolves the tool name, parses and validates the raw arguments,
// and executes the tool. Every failure mode is contained: the returned
// execution carries either a result or an error string, and a failing call
// never affects its siblings in the same batch.
func (d *Dispatcher) Dispatch(ctx context.Context, call model.ToolCallRequest, turn model.TurnContext) model.ToolExecution {
	exec := model.ToolExecution{ToolName: call.Name}

	kind, ok := parseKind(call.Name)
	if !ok {
		exec.Error = fmt.Sprintf("unknown tool: %s", call.Name)
		metrics.ToolExecutionsTotal.WithLabelValues(call.Name, "unknown").Inc()
		return exec
	}

	result, err := d.execute(ctx, kind, call.RawArguments, turn)
	if err != nil {
		d.logger.Error("tool execution failed",
			zap.String("tool", call.Name),
			zap.Error(err),
		)
		exec.Error = err.Error()
		metrics.ToolExecutionsTotal.WithLabelValues(call.Name, "error").Inc()
		return exec
	}

	exec.Result = &result
	metrics.ToolExecutionsTotal.WithLabelValues(call.Name, result.Status).Inc()
	d.events.ToolExecuted(call.Name, result.Status)
	return exec
}

func (d *Dispatcher) execute(ctx context.Context, kind Kind, rawArgs string, turn model.TurnContext) (model.ToolResult, error) {
	switch kind {
	case KindStoreChat:
		var args storeChatArgs
		if err := parseArgs(rawArgs, &args); err != nil {
			return model.ToolResult{}, err
		}
		return d.storeChat(ctx, turn)

	case KindStoreConfig:
		return d.storeConfig(ctx)

	case KindCheckStatus:
		var args checkStatusArgs
		if err := parseArgs(rawArgs, &args); err != nil {
			return model.ToolResult{}, err
		}
		if args.ReceiptID == "" {
			return model.ToolResult{}, fmt.Errorf("missing 'receipt_id' argument for %s", nameCheckStatus)
		}
		return d.checkStatus(ctx, args.ReceiptID)

	case KindListUploads:
		var args listUploadsArgs
		if err := parseArgs(rawArgs, &args); err != nil {
			return model.ToolResult{}, err
		}
		return d.listUploads(ctx, args.Limit)

	case KindWalletBalance:
		return d.walletBalance(ctx)

	case KindSearchByTag:
		var args searchByTagArgs
		if err := parseArgs(rawArgs, &args); err != nil {
			return model.ToolResult{}, err
		}
		if args.Tags == nil {
			return model.ToolResult{}, fmt.Errorf("invalid 'tags' argument for %s: expected an array of tag objects", nameSearchByTag)
		}
		return d.searchByTag(ctx, args.Tags)
	}

	return model.ToolResult{}, fmt.Errorf("unhandled tool kind %d", kind)
}

// parseArgs decodes the model-supplied argument payload. Malformed input
// fails here, before any backend call is made. Some models emit an empty
// string for tools that take no arguments; treat that as an empty object.
func parseArgs(raw string, out any) error {
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to parse arguments: %v", err)
	}
	return nil
}

// gatewayLink builds a public gateway URL for a confirmed transaction.
func (d *Dispatcher) gatewayLink(txID string) string {
	return d.cfg.GatewayURL + "/" + txID
}
