package handlers

import (
	"encoding/json"
	"net/http"

	"scholar-ai/internal/contextutil"
	"scholar-ai/internal/selfrag"
)

// BatchHandler handles batch completion requests.
type BatchHandler struct {
	engine       selfrag.Engine
	defaultModel string
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(engine selfrag.Engine, defaultModel string) *BatchHandler {
	return &BatchHandler{
		engine:       engine,
		defaultModel: defaultModel,
	}
}

// BatchRequest represents the HTTP request payload for a batch completion.
type BatchRequest struct {
	Prompts []string `json:"prompts"`
	GenerationParams
}

// BatchResponse represents the HTTP response payload for a batch completion.
type BatchResponse struct {
	Completions []string `json:"completions"`
}

// ServeHTTP handles HTTP requests for batch completions.
func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Prompts) == 0 {
		writeError(w, http.StatusBadRequest, "At least one prompt is required")
		return
	}

	completions, err := h.engine.GetBatchCompletion(ctx, req.Prompts, req.toConfig(h.defaultModel))
	if err != nil {
		handleEngineError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusOK, BatchResponse{Completions: completions})
}
