package arweave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/model"
)

// QuickUpload submits a buffer for upload and returns the pending receipt.
// The receipt does not yet carry a durable transaction id.
func (c *Client) QuickUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadReceipt, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	var receipt model.UploadReceipt
	if err := c.doJSON(ctx, http.MethodPost, "/uploads", req, &receipt); err != nil {
		return nil, fmt.Errorf("upload submission failed: %w", err)
	}

	c.logger.Info("upload submitted",
		zap.String("receipt_id", receipt.ID),
		zap.String("name", receipt.Name),
		zap.String("status", receipt.Status),
	)
	return &receipt, nil
}

// GetUploadByID looks up a single upload by its receipt id.
func (c *Client) GetUploadByID(ctx context.Context, id string) (*model.UploadRecord, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	var record model.UploadRecord
	if err := c.doJSON(ctx, http.MethodGet, "/uploads/"+url.PathEscape(id), nil, &record); err != nil {
		return nil, fmt.Errorf("upload lookup failed: %w", err)
	}
	return &record, nil
}

// GetUploads fetches one page of the wallet's uploads. The service has
// replied with both a bare array and a {data: [...]} wrapper across
// versions; both shapes are normalized here so callers only ever see a
// plain slice.
func (c *Client) GetUploads(ctx context.Context, page, limit int) ([]model.UploadRecord, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/uploads?page=%d&limit=%d", page, limit)

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("upload listing failed: %w", err)
	}
	return decodeUploadList(raw)
}

func decodeUploadList(raw json.RawMessage) ([]model.UploadRecord, error) {
	var records []model.UploadRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Data []model.UploadRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return nil, fmt.Errorf("unexpected upload listing shape")
}

// GetUser fetches the account profile, which carries balance information.
func (c *Client) GetUser(ctx context.Context) (*model.AccountProfile, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	var profile model.AccountProfile
	if err := c.doJSON(ctx, http.MethodGet, "/account", nil, &profile); err != nil {
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	return &profile, nil
}

// GetEstimates returns the service's cost estimate for storing size bytes.
func (c *Client) GetEstimates(ctx context.Context, size int) (model.CostEstimate, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}

	var estimate json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/estimates?size=%d", size), nil, &estimate); err != nil {
		return nil, fmt.Errorf("estimate lookup failed: %w", err)
	}
	return model.CostEstimate(estimate), nil
}
