package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"scholar-ai/internal/contextutil"
	"scholar-ai/internal/storage"
	"scholar-ai/internal/vectorstore"
)

// Embedder converts texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline indexes markdown corpus documents into SQLite and Qdrant.
type Pipeline struct {
	corpusRoot  string
	sources     storage.SourceStore
	chunks      storage.ChunkStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunker     *MarkdownChunker
}

// NewPipeline creates a new indexing pipeline rooted at corpusRoot.
func NewPipeline(
	corpusRoot string,
	sources storage.SourceStore,
	chunks storage.ChunkStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		corpusRoot:  corpusRoot,
		sources:     sources,
		chunks:      chunks,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunker:     NewMarkdownChunker(),
	}
}

// IndexFile indexes a single markdown file under the corpus root.
// Unchanged files (matching SHA256 hash) are skipped. Changed files have
// their old chunks removed from both stores before the new ones are written.
func (p *Pipeline) IndexFile(ctx context.Context, relPath string) error {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(filepath.Join(p.corpusRoot, relPath))
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", relPath, err)
	}

	hashHex := fmt.Sprintf("%x", sha256.Sum256(content))
	name := sourceName(relPath)

	existing, err := p.sources.GetByName(ctx, name)
	if err != nil && err != storage.ErrNotFound {
		return fmt.Errorf("failed to check existing source: %w", err)
	}

	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "rel_path", relPath, "hash", hashHex)
		return nil
	}

	chunks := p.chunker.ChunkDocument(content)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "rel_path", relPath)
		return nil
	}

	var sourceID int
	if existing != nil {
		sourceID = existing.ID
		if err := p.sources.UpdateHash(ctx, sourceID, hashHex); err != nil {
			return fmt.Errorf("failed to update source hash: %w", err)
		}

		oldChunkIDs, err := p.chunks.ListIDsBySource(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("failed to list old chunk IDs: %w", err)
		}
		if len(oldChunkIDs) > 0 {
			// A stale point in Qdrant is overwritten on the next upsert
			// anyway, so a delete failure is not fatal.
			if err := p.vectorStore.Delete(ctx, p.collection, oldChunkIDs); err != nil {
				logger.WarnContext(ctx, "failed to delete old points", "error", err, "count", len(oldChunkIDs))
			}
			if err := p.chunks.DeleteBySource(ctx, sourceID); err != nil {
				return fmt.Errorf("failed to delete old chunks: %w", err)
			}
		}
	} else {
		source := &storage.SourceRecord{Name: name, RelPath: relPath, Hash: hashHex}
		if err := p.sources.Create(ctx, source); err != nil {
			return fmt.Errorf("failed to create source: %w", err)
		}
		sourceID = source.ID
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		chunkID := uuid.New().String()

		record := &storage.ChunkRecord{
			ID:         chunkID,
			SourceID:   sourceID,
			ChunkIndex: chunk.Index,
			Section:    chunk.Section,
			Text:       chunk.Text,
		}
		if err := p.chunks.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}

		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"source_id":   sourceID,
				"source_name": name,
				"rel_path":    relPath,
				"section":     chunk.Section,
				"chunk_index": chunk.Index,
			},
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "indexed source", "rel_path", relPath, "chunks", len(chunks))
	return nil
}

// IndexDir walks the corpus root and indexes every markdown file.
// Per-file errors are logged and counted but do not stop the walk.
func (p *Pipeline) IndexDir(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	var relPaths []string
	err := filepath.WalkDir(p.corpusRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		rel, err := filepath.Rel(p.corpusRoot, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk corpus root: %w", err)
	}

	logger.InfoContext(ctx, "starting indexing", "total_files", len(relPaths))

	var successCount, errorCount int
	for _, relPath := range relPaths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := p.IndexFile(ctx, relPath); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to index file", "rel_path", relPath, "error", err)
			continue
		}
		successCount++
	}

	logger.InfoContext(ctx, "indexing completed",
		"total_files", len(relPaths), "success", successCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("indexing completed with %d errors", errorCount)
	}
	return nil
}

// sourceName derives the unique source name from a relative path by
// dropping the extension.
func sourceName(relPath string) string {
	return strings.TrimSuffix(filepath.ToSlash(relPath), filepath.Ext(relPath))
}
