package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"scholar-ai/internal/config"
	"scholar-ai/internal/http"
	"scholar-ai/internal/indexer"
	"scholar-ai/internal/llm"
	"scholar-ai/internal/retrieval"
	"scholar-ai/internal/selfrag"
	"scholar-ai/internal/storage"
	"scholar-ai/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	sourceRepo := storage.NewSourceRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Wait for the completion model to be loaded before serving
	loader := llm.NewModelLoader(cfg.LLMBaseURL)
	if err := loader.EnsureLoaded(ctx, cfg.LLMModelName); err != nil {
		log.Fatalf("Failed to load model %s: %v", cfg.LLMModelName, err)
	}
	slog.Info("Model ready", "model", cfg.LLMModelName)

	pipeline := indexer.NewPipeline(
		cfg.CorpusPath,
		sourceRepo,
		chunkRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
	)

	backend := llm.NewInstructClient(cfg.LLMBaseURL, cfg.LLMAPIKey)

	retriever := retrieval.NewVectorRetriever(
		embedder,
		vectorStore,
		chunkRepo,
		cfg.QdrantCollection,
		cfg.RetrievalTopK,
	)
	defer retriever.Close()

	engine := selfrag.NewEngine(backend, retriever, cfg.MaxRetrievals)
	slog.Info("Completion engine initialized", "max_retrievals", cfg.MaxRetrievals)

	deps := &http.Deps{
		Engine:       engine,
		VectorStore:  vectorStore,
		Collection:   cfg.QdrantCollection,
		DefaultModel: cfg.LLMModelName,
	}
	router := http.NewRouter(deps)

	// Index the corpus in the background once the router is up
	go func() {
		slog.Info("Starting background indexing", "corpus", cfg.CorpusPath)
		if err := pipeline.IndexDir(context.Background()); err != nil {
			slog.Error("Indexing completed with errors", "error", err)
		} else {
			slog.Info("Indexing completed successfully")
		}
	}()

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
