package handlers

import (
	"encoding/json"
	"net/http"

	"scholar-ai/internal/contextutil"
	"scholar-ai/internal/llm"
	"scholar-ai/internal/selfrag"
)

// ChatHandler handles conversational completion requests.
type ChatHandler struct {
	engine       selfrag.Engine
	defaultModel string
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine selfrag.Engine, defaultModel string) *ChatHandler {
	return &ChatHandler{
		engine:       engine,
		defaultModel: defaultModel,
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Messages []llm.Message `json:"messages"`
	GenerationParams
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ServeHTTP handles HTTP requests for chat completions.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "At least one message is required")
		return
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		default:
			writeError(w, http.StatusBadRequest, "Unknown message role: "+msg.Role)
			return
		}
	}

	reply, err := h.engine.GetChatCompletion(ctx, req.Messages, req.toConfig(h.defaultModel))
	if err != nil {
		handleEngineError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
