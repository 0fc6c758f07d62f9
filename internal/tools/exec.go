package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gaiachat/arweave-agent/internal/model"
)

// Upload names and tag values distinguishing agent-initiated uploads.
const (
	agentAppTag       = "GaiaArweaveAgentDemo"
	actionStoreChat   = "StoreFullChat"
	actionStoreConfig = "StoreConfig"
)

func (d *Dispatcher) storeChat(ctx context.Context, turn model.TurnContext) (model.ToolResult, error) {
	transcript := reconstructTranscript(turn)
	if strings.TrimSpace(transcript) == "" {
		return model.ToolResult{}, fmt.Errorf("cannot store chat: reconstructed transcript is empty")
	}

	data := []byte(transcript)
	receipt, err := d.backend.QuickUpload(ctx, &model.UploadRequest{
		Name:        fmt.Sprintf("agent-chat-full-%d.txt", time.Now().UnixMilli()),
		ContentType: "text/plain",
		Visibility:  "public",
		Size:        len(data),
		Data:        data,
		Tags: []model.Tag{
			{Name: "App", Value: agentAppTag},
			{Name: "Action", Value: actionStoreChat},
			{Name: "Gaia-Endpoint", Value: d.cfg.GaiaNodeURL},
			{Name: "Model", Value: d.cfg.GaiaModel},
			{Name: "Timestamp", Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to store chat: %v", err)
	}

	outcome, err := d.confirmer.Confirm(ctx, receipt.ID, toolConfirmAttempts, toolConfirmDelay)
	if err != nil {
		return model.ToolResult{}, err
	}

	if outcome.Pending {
		return model.ToolResult{
			Status:    model.StatusPending,
			Message:   "Upload initiated, but Arweave transaction ID is pending. Check back later using the Receipt ID.",
			ReceiptID: receipt.ID,
		}, nil
	}

	d.events.UploadConfirmed(receipt.ID, outcome.TxID)
	return model.ToolResult{
		Status:    model.StatusSuccess,
		Message:   "Chat stored successfully.",
		Link:      d.gatewayLink(outcome.TxID),
		ReceiptID: receipt.ID,
	}, nil
}

func (d *Dispatcher) storeConfig(ctx context.Context) (model.ToolResult, error) {
	if d.cfg.GaiaNodeURL == "" {
		return model.ToolResult{}, fmt.Errorf("GAIA_NODE_URL is not configured")
	}

	configURL := deriveConfigURL(d.cfg.GaiaNodeURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, configURL, nil)
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to build config request: %v", err)
	}

	resp, err := d.httpc.Do(req)
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to fetch config from %s: %v", configURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.ToolResult{}, fmt.Errorf("failed to fetch config from %s: status %d %s", configURL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to read config body: %v", err)
	}

	fileName := fmt.Sprintf("gaia-config-%s.txt", time.Now().UTC().Format("2006-01-02"))
	receipt, err := d.backend.QuickUpload(ctx, &model.UploadRequest{
		Name:        fileName,
		ContentType: "text/plain",
		Visibility:  "public",
		Size:        len(data),
		Data:        data,
		Tags: []model.Tag{
			{Name: "App", Value: agentAppTag},
			{Name: "Action", Value: actionStoreConfig},
			{Name: "Gaia-Endpoint", Value: d.cfg.GaiaNodeURL},
			{Name: "Config-Source-URL", Value: configURL},
			{Name: "Content-Type", Value: "application/json"},
			{Name: "Timestamp", Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to store Gaia config: %v", err)
	}

	outcome, err := d.confirmer.Confirm(ctx, receipt.ID, toolConfirmAttempts, toolConfirmDelay)
	if err != nil {
		return model.ToolResult{}, err
	}

	if outcome.Pending {
		return model.ToolResult{
			Status:         model.StatusPending,
			Message:        "Config upload initiated, but Arweave transaction ID is pending. Check back later using the Receipt ID.",
			ReceiptID:      receipt.ID,
			StoredFileName: fileName,
		}, nil
	}

	d.events.UploadConfirmed(receipt.ID, outcome.TxID)
	return model.ToolResult{
		Status:         model.StatusSuccess,
		Message:        "Gaia node configuration stored successfully.",
		Link:           d.gatewayLink(outcome.TxID),
		ReceiptID:      receipt.ID,
		StoredFileName: fileName,
	}, nil
}

func (d *Dispatcher) checkStatus(ctx context.Context, receiptID string) (model.ToolResult, error) {
	var found *model.UploadRecord

	// Scan the listing page by page; a short page means end of data.
	for page := 1; found == nil; page++ {
		uploads, err := d.backend.GetUploads(ctx, page, statusScanPageSize)
		if err != nil {
			return model.ToolResult{}, fmt.Errorf("failed to check transaction status: %v", err)
		}

		for i := range uploads {
			if uploads[i].ID == receiptID {
				found = &uploads[i]
				break
			}
		}

		if len(uploads) < statusScanPageSize {
			break
		}
	}

	if found == nil {
		return model.ToolResult{
			Status:            model.StatusNotFound,
			Message:           fmt.Sprintf("Could not find an upload record for Receipt ID: %s. It might be incorrect or too old.", receiptID),
			ReceiptIDSearched: receiptID,
		}, nil
	}

	status := found.Status
	if status == "" {
		status = "unknown"
	}
	result := model.ToolResult{
		Status:      status,
		Message:     fmt.Sprintf("Status for Receipt ID %s: %s", receiptID, status),
		ReceiptID:   found.ID,
		ArweaveTxID: found.ArweaveTxID,
		Name:        found.Name,
		Size:        found.Size,
		CreatedAt:   found.CreatedAt,
	}
	if found.ArweaveTxID != "" {
		result.Link = d.gatewayLink(found.ArweaveTxID)
	}
	return result, nil
}

func (d *Dispatcher) listUploads(ctx context.Context, limit int) (model.ToolResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	uploads, err := d.backend.GetUploads(ctx, 1, limit)
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to list uploads: %v", err)
	}

	summaries := make([]model.UploadSummary, len(uploads))
	for i, u := range uploads {
		summaries[i] = model.UploadSummary{
			ReceiptID:   u.ID,
			Name:        u.Name,
			Status:      u.Status,
			SizeBytes:   u.Size,
			CreatedAt:   u.CreatedAt,
			ArweaveTxID: u.ArweaveTxID,
		}
	}

	return model.ToolResult{
		Status:  model.StatusSuccess,
		Message: fmt.Sprintf("Retrieved %d recent uploads.", len(summaries)),
		Uploads: summaries,
	}, nil
}

func (d *Dispatcher) walletBalance(ctx context.Context) (model.ToolResult, error) {
	profile, err := d.backend.GetUser(ctx)
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to get wallet balance: %v", err)
	}

	return model.ToolResult{
		Status:        model.StatusSuccess,
		Message:       "Wallet balance retrieved.",
		Balance:       profile.BalanceAmount(d.cfg.TokenSymbol),
		Token:         strings.ToUpper(d.cfg.TokenSymbol),
		WalletAddress: profile.WalletAddress,
	}, nil
}

func (d *Dispatcher) searchByTag(ctx context.Context, query []model.Tag) (model.ToolResult, error) {
	uploads, err := d.backend.GetUploads(ctx, 1, 50)
	if err != nil {
		return model.ToolResult{}, fmt.Errorf("failed to search files by tag: %v", err)
	}

	var matches []model.UploadSummary
	for _, u := range uploads {
		if u.HasTags(query) {
			matches = append(matches, model.UploadSummary{
				ReceiptID:   u.ID,
				Name:        u.Name,
				Status:      u.Status,
				CreatedAt:   u.CreatedAt,
				ArweaveTxID: u.ArweaveTxID,
			})
		}
	}

	return model.ToolResult{
		Status:     model.StatusSuccess,
		Message:    fmt.Sprintf("Found %d uploads matching the tags.", len(matches)),
		SearchTags: query,
		Results:    matches,
	}, nil
}

// reconstructTranscript rebuilds the full chat text from the turn context:
// prior history, the user message that triggered the tool call, and a note
// that the assistant initiated storage.
func reconstructTranscript(turn model.TurnContext) string {
	var lines []string
	for _, msg := range turn.History {
		if msg.Role == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(msg.Role)), msg.Content))
	}
	lines = append(lines, fmt.Sprintf("USER: %s", turn.UserMessage))
	lines = append(lines, "ASSISTANT: (Initiating storage of the conversation upon user request.)")
	return strings.Join(lines, "\n\n")
}

var apiSuffixPattern = regexp.MustCompile(`/(v\d+|api)/?$`)

// deriveConfigURL turns a node's completion endpoint into the public
// config document URL: the trailing API path segment is stripped and
// config_pub.json appended.
func deriveConfigURL(nodeURL string) string {
	base := apiSuffixPattern.ReplaceAllString(nodeURL, "")
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "config_pub.json"
}
