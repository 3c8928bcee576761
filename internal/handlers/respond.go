// Package handlers contains the HTTP handlers for the completion API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"scholar-ai/internal/contextutil"
	"scholar-ai/internal/prompt"
	"scholar-ai/internal/selfrag"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// handleEngineError maps engine errors to HTTP status codes.
func handleEngineError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "completion failed", "error", err)

	var configErr *selfrag.ConfigError
	if errors.As(err, &configErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid configuration: %s", configErr.Error()))
		return
	}

	if errors.Is(err, selfrag.ErrRetrievalLimit) {
		writeError(w, http.StatusBadGateway, "Model kept requesting retrieval and was cut off")
		return
	}

	if errors.Is(err, prompt.ErrMalformedCompletion) {
		writeError(w, http.StatusBadGateway, "Model returned a malformed completion")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to generate completion")
}
