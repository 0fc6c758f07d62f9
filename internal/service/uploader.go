package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gaiachat/arweave-agent/internal/events"
	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/internal/poller"
	"github.com/gaiachat/arweave-agent/pkg/logger"
	"github.com/gaiachat/arweave-agent/pkg/metrics"
)

// chatAppTag marks uploads made through the plain chat surface, as
// opposed to agent-initiated ones.
const chatAppTag = "GaiaArweaveChat"

// Confirmation budget for the foreground upload endpoint. Longer than the
// agent tool budget because the user is actively waiting on this request.
const (
	uploadConfirmAttempts = 10
	uploadConfirmDelay    = 3 * time.Second
)

// Listing page size for /get-my-uploads.
const myUploadsPageSize = 20

// UploadBackend is the slice of the storage client the uploader needs.
type UploadBackend interface {
	QuickUpload(ctx context.Context, req *model.UploadRequest) (*model.UploadReceipt, error)
	GetUploads(ctx context.Context, page, limit int) ([]model.UploadRecord, error)
	GetEstimates(ctx context.Context, size int) (model.CostEstimate, error)
}

// Confirmer resolves a receipt into a durable transaction id.
type Confirmer interface {
	Confirm(ctx context.Context, receiptID string, maxAttempts int, delay time.Duration) (poller.Outcome, error)
}

// UploadService builds and submits transcript uploads and serves listing
// and estimate lookups.
type UploadService struct {
	backend   UploadBackend
	confirmer Confirmer
	events    *events.Publisher
	logger    *logger.Logger

	gaiaNodeURL string
	gaiaModel   string
	gatewayURL  string
}

// NewUploadService creates an upload service.
func NewUploadService(backend UploadBackend, confirmer Confirmer, pub *events.Publisher, nodeURL, modelName, gatewayURL string, log *logger.Logger) *UploadService {
	return &UploadService{
		backend:     backend,
		confirmer:   confirmer,
		events:      pub,
		logger:      log,
		gaiaNodeURL: nodeURL,
		gaiaModel:   modelName,
		gatewayURL:  gatewayURL,
	}
}

// UploadTranscript submits the transcript and waits for confirmation with
// the foreground budget. Exhausting the budget is not a failure: the
// response carries the receipt and a pending message so the caller can
// check back later.
func (s *UploadService) UploadTranscript(ctx context.Context, transcript string) (*model.UploadTranscriptResponse, error) {
	data := []byte(transcript)

	receipt, err := s.backend.QuickUpload(ctx, &model.UploadRequest{
		Name:        fmt.Sprintf("gaia-chat-%d.txt", time.Now().UnixMilli()),
		ContentType: "text/plain",
		Visibility:  "public",
		Size:        len(data),
		Data:        data,
		Tags: []model.Tag{
			{Name: "App", Value: chatAppTag},
			{Name: "Gaia-Endpoint", Value: s.gaiaNodeURL},
			{Name: "Model", Value: s.gaiaModel},
			{Name: "Timestamp", Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	outcome, err := s.confirmer.Confirm(ctx, receipt.ID, uploadConfirmAttempts, uploadConfirmDelay)
	if err != nil {
		return nil, err
	}

	resp := &model.UploadTranscriptResponse{Receipt: receipt}
	if outcome.Pending {
		metrics.UploadsTotal.WithLabelValues("pending").Inc()
		resp.Message = "Upload initiated. Arweave transaction ID pending. " +
			"Check back shortly or use the Receipt ID with the service's status API."
		return resp, nil
	}

	metrics.UploadsTotal.WithLabelValues("confirmed").Inc()
	s.events.UploadConfirmed(receipt.ID, outcome.TxID)

	link := s.gatewayURL + "/" + outcome.TxID
	resp.ArweaveTxID = &outcome.TxID
	resp.Link = &link
	resp.Message = "Upload successful!"
	return resp, nil
}

// Estimates returns the storage cost estimate for the transcript.
func (s *UploadService) Estimates(ctx context.Context, transcript string) (model.CostEstimate, error) {
	return s.backend.GetEstimates(ctx, len([]byte(transcript)))
}

// ListUploads returns the app wallet's recent uploads.
func (s *UploadService) ListUploads(ctx context.Context) ([]model.UploadRecord, error) {
	uploads, err := s.backend.GetUploads(ctx, 1, myUploadsPageSize)
	if err != nil {
		return nil, err
	}
	if uploads == nil {
		uploads = []model.UploadRecord{}
	}
	return uploads, nil
}
