package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiachat/arweave-agent/internal/llm"
	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/internal/poller"
	"github.com/gaiachat/arweave-agent/pkg/logger"
)

type fakeUploadBackend struct {
	uploads   []*model.UploadRequest
	receipt   *model.UploadReceipt
	uploadErr error
	records   []model.UploadRecord
	listErr   error
	estimate  model.CostEstimate
}

func (f *fakeUploadBackend) QuickUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadReceipt, error) {
	f.uploads = append(f.uploads, req)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.receipt, nil
}

func (f *fakeUploadBackend) GetUploads(ctx context.Context, page, limit int) ([]model.UploadRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeUploadBackend) GetEstimates(ctx context.Context, size int) (model.CostEstimate, error) {
	return f.estimate, nil
}

type scriptedConfirmer struct {
	outcome poller.Outcome
	budgets []int
	delays  []time.Duration
}

func (s *scriptedConfirmer) Confirm(ctx context.Context, receiptID string, maxAttempts int, delay time.Duration) (poller.Outcome, error) {
	s.budgets = append(s.budgets, maxAttempts)
	s.delays = append(s.delays, delay)
	return s.outcome, nil
}

func newUploader(backend *fakeUploadBackend, confirmer *scriptedConfirmer) *UploadService {
	return NewUploadService(backend, confirmer, nil,
		"https://node.example.com/v1", "gpt-3.5-turbo", "https://arweave.net",
		logger.NewNop())
}

func TestUploadTranscriptConfirmed(t *testing.T) {
	backend := &fakeUploadBackend{receipt: &model.UploadReceipt{ID: "rcpt-1", Status: "pending"}}
	confirmer := &scriptedConfirmer{outcome: poller.Outcome{TxID: "tx-abc"}}

	resp, err := newUploader(backend, confirmer).UploadTranscript(context.Background(), "USER: hello")
	require.NoError(t, err)

	require.NotNil(t, resp.ArweaveTxID)
	assert.Equal(t, "tx-abc", *resp.ArweaveTxID)
	require.NotNil(t, resp.Link)
	assert.Equal(t, "https://arweave.net/tx-abc", *resp.Link)
	assert.Equal(t, "Upload successful!", resp.Message)
	assert.Equal(t, "rcpt-1", resp.Receipt.ID)

	// Foreground budget, not the shorter agent-tool one.
	assert.Equal(t, []int{uploadConfirmAttempts}, confirmer.budgets)
	assert.Equal(t, []time.Duration{uploadConfirmDelay}, confirmer.delays)

	require.Len(t, backend.uploads, 1)
	req := backend.uploads[0]
	assert.Equal(t, "USER: hello", string(req.Data))
	assert.Equal(t, len("USER: hello"), req.Size)
	assert.Equal(t, "text/plain", req.ContentType)
	var tagNames []string
	for _, tag := range req.Tags {
		tagNames = append(tagNames, tag.Name)
	}
	assert.ElementsMatch(t, []string{"App", "Gaia-Endpoint", "Model", "Timestamp"}, tagNames)
}

func TestUploadTranscriptPendingIsNotAnError(t *testing.T) {
	backend := &fakeUploadBackend{receipt: &model.UploadReceipt{ID: "rcpt-2"}}
	confirmer := &scriptedConfirmer{outcome: poller.Outcome{Pending: true}}

	resp, err := newUploader(backend, confirmer).UploadTranscript(context.Background(), "text")
	require.NoError(t, err)

	assert.Nil(t, resp.ArweaveTxID)
	assert.Nil(t, resp.Link)
	assert.Contains(t, resp.Message, "pending")
	assert.Equal(t, "rcpt-2", resp.Receipt.ID)
}

func TestUploadTranscriptBackendFailure(t *testing.T) {
	backend := &fakeUploadBackend{uploadErr: errors.New("insufficient funds")}

	resp, err := newUploader(backend, &scriptedConfirmer{}).UploadTranscript(context.Background(), "text")
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestListUploadsNeverReturnsNil(t *testing.T) {
	backend := &fakeUploadBackend{records: nil}

	uploads, err := newUploader(backend, &scriptedConfirmer{}).ListUploads(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, uploads)
	assert.Empty(t, uploads)
}

func TestEstimatesPassesRawDocumentThrough(t *testing.T) {
	raw := model.CostEstimate(json.RawMessage(`{"usdc":{"amount":"0.0012"}}`))
	backend := &fakeUploadBackend{estimate: raw}

	est, err := newUploader(backend, &scriptedConfirmer{}).Estimates(context.Background(), "some transcript")
	require.NoError(t, err)
	assert.JSONEq(t, `{"usdc":{"amount":"0.0012"}}`, string(est))
}

func TestChatReplyIsToolFree(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.CompletionResponse{{Content: "hello back"}}}

	reply, err := NewChatService(client, "gpt-3.5-turbo").Reply(context.Background(),
		[]model.ChatMessage{{Role: model.RoleUser, Content: "earlier"}}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Empty(t, req.Tools)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, model.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "hello", req.Messages[2].Content)
}

func TestChatReplyPropagatesFailure(t *testing.T) {
	client := &scriptedLLM{errs: []error{errors.New("node down")}}

	_, err := NewChatService(client, "gpt-3.5-turbo").Reply(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.ErrorContains(t, err, "node down")
}
