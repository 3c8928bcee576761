package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scholar-ai/internal/handlers"
	"scholar-ai/internal/selfrag"
	"scholar-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine       selfrag.Engine
	VectorStore  vectorstore.VectorStore
	Collection   string
	DefaultModel string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	completionHandler := handlers.NewCompletionHandler(deps.Engine, deps.DefaultModel)
	chatHandler := handlers.NewChatHandler(deps.Engine, deps.DefaultModel)
	batchHandler := handlers.NewBatchHandler(deps.Engine, deps.DefaultModel)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/completion", completionHandler)
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/batch", batchHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
