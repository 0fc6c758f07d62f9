package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaiachat/arweave-agent/internal/arweave"
	"github.com/gaiachat/arweave-agent/internal/model"
	"github.com/gaiachat/arweave-agent/pkg/logger"
)

// Uploader is the upload service surface the handler depends on.
type Uploader interface {
	UploadTranscript(ctx context.Context, transcript string) (*model.UploadTranscriptResponse, error)
	Estimates(ctx context.Context, transcript string) (model.CostEstimate, error)
	ListUploads(ctx context.Context) ([]model.UploadRecord, error)
}

// UploadHandler handles the transcript upload endpoints.
type UploadHandler struct {
	uploader Uploader
	logger   *logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader Uploader, log *logger.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: log}
}

// Estimates handles POST /get-estimates
func (h *UploadHandler) Estimates(w http.ResponseWriter, r *http.Request) {
	var req model.TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "Transcript is required")
		return
	}

	estimates, err := h.uploader.Estimates(r.Context(), req.Transcript)
	if err != nil {
		h.logger.Error("failed to get estimates", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to get estimates", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(estimates)
}

// Upload handles POST /upload-transcript
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req model.TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "Transcript is required")
		return
	}

	resp, err := h.uploader.UploadTranscript(r.Context(), req.Transcript)
	if err != nil {
		h.logger.Error("failed to upload transcript", zap.Error(err))
		if errors.Is(err, arweave.ErrInsufficientFunds) {
			writeErrorDetails(w, http.StatusPaymentRequired, "Upload failed: Insufficient funds in app wallet.", err.Error())
			return
		}
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to upload transcript", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /get-my-uploads
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploader.ListUploads(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch uploads", zap.Error(err))
		if errors.Is(err, arweave.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Unauthorized: Please check app wallet configuration.")
			return
		}
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to fetch uploads", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploads)
}
