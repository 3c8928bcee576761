package handlers

import (
	"encoding/json"
	"net/http"

	"scholar-ai/internal/contextutil"
	"scholar-ai/internal/selfrag"
)

// CompletionHandler handles single-prompt completion requests.
type CompletionHandler struct {
	engine       selfrag.Engine
	defaultModel string
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(engine selfrag.Engine, defaultModel string) *CompletionHandler {
	return &CompletionHandler{
		engine:       engine,
		defaultModel: defaultModel,
	}
}

// CompletionRequest represents the HTTP request payload for a completion.
type CompletionRequest struct {
	Prompt string `json:"prompt"`
	GenerationParams
}

// CompletionResponse represents the HTTP response payload for a completion.
type CompletionResponse struct {
	Completion string `json:"completion"`
}

// ServeHTTP handles HTTP requests for completions.
func (h *CompletionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	completion, err := h.engine.GetCompletion(ctx, req.Prompt, req.toConfig(h.defaultModel))
	if err != nil {
		handleEngineError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusOK, CompletionResponse{Completion: completion})
}
