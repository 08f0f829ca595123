// Package api serves the knowledge base over a JSON HTTP API.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Errors returned when a required port is missing.
var (
	ErrMissingIngestionService  = errors.New("api: ingestion service is required")
	ErrMissingRetrievalService  = errors.New("api: retrieval service is required")
	ErrMissingCollectionService = errors.New("api: collection service is required")
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case domain.IsUserError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage is the error text shown for a 4xx response.
func (h *Handler) clientMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyDocument):
		return "No text content found in file"
	case errors.Is(err, domain.ErrNoChunksProduced):
		return "Failed to create chunks from document"
	case errors.Is(err, domain.ErrDocumentTooLarge):
		return h.tooLargeMessage()
	default:
		return err.Error()
	}
}

func (h *Handler) tooLargeMessage() string {
	limit := fmt.Sprintf("%d bytes", h.maxUploadBytes)
	if h.maxUploadBytes >= 1<<20 && h.maxUploadBytes%(1<<20) == 0 {
		limit = fmt.Sprintf("%dMB", h.maxUploadBytes>>20)
	}
	return "File too large. Maximum size is " + limit + "."
}

// fail writes err as a JSON error. Server errors carry action as the
// message and the cause as details.
func (h *Handler) fail(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Error: h.clientMessage(err)})
		return
	}
	logger.Error("%s: %v", action, err)
	writeJSON(w, status, errorResponse{Error: action, Details: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
