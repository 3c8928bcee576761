// Package retrieval turns free-text queries into corpus context by
// embedding them and searching the vector store.
package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks scholar-ai/internal/retrieval Embedder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"scholar-ai/internal/contextutil"
	"scholar-ai/internal/storage"
	"scholar-ai/internal/vectorstore"
)

// Embedder converts texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// DefaultContextTTL is how long a retrieved context stays cached per query.
const DefaultContextTTL = 5 * time.Minute

// VectorRetriever retrieves corpus context for queries via embedding search.
// Identical queries within the TTL window are served from an in-memory cache.
type VectorRetriever struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	chunks      storage.ChunkStore
	collection  string
	topK        int
	cache       *ttlcache.Cache[string, string]
}

// NewVectorRetriever creates a retriever searching the given collection.
// topK values <= 0 default to 3. Call Close when done to stop the cache
// eviction goroutine.
func NewVectorRetriever(embedder Embedder, store vectorstore.VectorStore, chunks storage.ChunkStore, collection string, topK int) *VectorRetriever {
	if topK <= 0 {
		topK = 3
	}

	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](DefaultContextTTL),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()

	return &VectorRetriever{
		embedder:    embedder,
		vectorStore: store,
		chunks:      chunks,
		collection:  collection,
		topK:        topK,
		cache:       cache,
	}
}

// Close stops the cache eviction goroutine.
func (r *VectorRetriever) Close() {
	r.cache.Stop()
}

// GetContexts returns one context string per query, preserving order.
// Cache hits skip embedding and search entirely; misses are embedded in a
// single batch request.
func (r *VectorRetriever) GetContexts(ctx context.Context, queries []string) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries provided")
	}

	contexts := make([]string, len(queries))
	var missIdx []int
	var missQueries []string
	for i, query := range queries {
		if item := r.cache.Get(query); item != nil {
			contexts[i] = item.Value()
			continue
		}
		missIdx = append(missIdx, i)
		missQueries = append(missQueries, query)
	}

	if len(missQueries) == 0 {
		logger.DebugContext(ctx, "all queries served from cache", "count", len(queries))
		return contexts, nil
	}

	vectors, err := r.embedder.EmbedTexts(ctx, missQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to embed queries: %w", err)
	}
	if len(vectors) != len(missQueries) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(missQueries))
	}

	for j, vec := range vectors {
		contextText, err := r.searchContext(ctx, vec)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve context for query: %w", err)
		}
		contexts[missIdx[j]] = contextText
		r.cache.Set(missQueries[j], contextText, ttlcache.DefaultTTL)
	}

	logger.DebugContext(ctx, "retrieved contexts",
		"queries", len(queries), "cache_hits", len(queries)-len(missQueries))
	return contexts, nil
}

// searchContext runs a similarity search for one vector and joins the
// matched chunk texts.
func (r *VectorRetriever) searchContext(ctx context.Context, vec []float32) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	results, err := r.vectorStore.Search(ctx, r.collection, vec, r.topK, nil)
	if err != nil {
		return "", fmt.Errorf("vector search failed: %w", err)
	}

	var texts []string
	for _, result := range results {
		chunk, err := r.chunks.GetByID(ctx, result.PointID)
		if err != nil {
			// A point without a backing chunk row means the index and the
			// database drifted apart; skip it rather than failing the query.
			logger.WarnContext(ctx, "chunk lookup failed for search hit",
				"point_id", result.PointID, "error", err)
			continue
		}
		texts = append(texts, chunk.Text)
	}

	return strings.Join(texts, "\n\n"), nil
}
