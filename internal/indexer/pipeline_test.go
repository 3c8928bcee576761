package indexer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scholar-ai/internal/indexer"
	retrievalmocks "scholar-ai/internal/retrieval/mocks"
	"scholar-ai/internal/storage"
	"scholar-ai/internal/vectorstore"
	vectorstoremocks "scholar-ai/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

const testDoc = `# Background

The incompleteness theorems, published in 1931, showed that any consistent
formal system containing arithmetic has true statements it cannot prove.
`

// setupPipeline wires a pipeline over a real temp SQLite database with a
// mocked embedder and vector store.
func setupPipeline(t *testing.T, ctrl *gomock.Controller) (*indexer.Pipeline, string, *retrievalmocks.MockEmbedder, *vectorstoremocks.MockVectorStore, *storage.SourceRepo, *storage.ChunkRepo) {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error: %v", err)
	}

	corpusRoot := t.TempDir()
	embedder := retrievalmocks.NewMockEmbedder(ctrl)
	store := vectorstoremocks.NewMockVectorStore(ctrl)
	sources := storage.NewSourceRepo(db)
	chunks := storage.NewChunkRepo(db)

	pipeline := indexer.NewPipeline(corpusRoot, sources, chunks, embedder, store, "papers")
	return pipeline, corpusRoot, embedder, store, sources, chunks
}

// embedAll returns one small vector per input text.
func embedAll(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{0.1, 0.2}
	}
	return vecs, nil
}

func writeDoc(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}

func TestPipeline_IndexFile_NewSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, root, embedder, store, sources, chunks := setupPipeline(t, ctrl)
	writeDoc(t, root, "papers/goedel.md", testDoc)
	ctx := context.Background()

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedAll)

	var upserted []vectorstore.Point
	store.EXPECT().
		Upsert(gomock.Any(), "papers", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			upserted = points
			return nil
		})

	if err := pipeline.IndexFile(ctx, "papers/goedel.md"); err != nil {
		t.Fatalf("IndexFile() error: %v", err)
	}

	source, err := sources.GetByName(ctx, "papers/goedel")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}
	if source.RelPath != "papers/goedel.md" {
		t.Errorf("RelPath = %q", source.RelPath)
	}
	if source.Hash == "" {
		t.Error("source hash not recorded")
	}

	ids, err := chunks.ListIDsBySource(ctx, source.ID)
	if err != nil {
		t.Fatalf("ListIDsBySource() error: %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("no chunks stored")
	}
	if len(upserted) != len(ids) {
		t.Fatalf("upserted %d points for %d chunks", len(upserted), len(ids))
	}

	meta := upserted[0].Meta
	if meta["source_id"] != source.ID {
		t.Errorf("point source_id = %v, want %d", meta["source_id"], source.ID)
	}
	if meta["source_name"] != "papers/goedel" {
		t.Errorf("point source_name = %v", meta["source_name"])
	}
	if meta["section"] != "# Background" {
		t.Errorf("point section = %v", meta["section"])
	}
}

func TestPipeline_IndexFile_SkipsUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, root, embedder, store, _, _ := setupPipeline(t, ctrl)
	writeDoc(t, root, "doc.md", testDoc)
	ctx := context.Background()

	// Exactly one embed and one upsert despite two indexing passes.
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedAll).Times(1)
	store.EXPECT().Upsert(gomock.Any(), "papers", gomock.Any()).Return(nil).Times(1)

	if err := pipeline.IndexFile(ctx, "doc.md"); err != nil {
		t.Fatalf("first IndexFile() error: %v", err)
	}
	if err := pipeline.IndexFile(ctx, "doc.md"); err != nil {
		t.Fatalf("second IndexFile() error: %v", err)
	}
}

func TestPipeline_IndexFile_ReindexesChangedSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, root, embedder, store, sources, chunks := setupPipeline(t, ctrl)
	writeDoc(t, root, "doc.md", testDoc)
	ctx := context.Background()

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedAll).Times(2)
	store.EXPECT().Upsert(gomock.Any(), "papers", gomock.Any()).Return(nil).Times(2)
	// Re-index must remove the superseded points.
	store.EXPECT().Delete(gomock.Any(), "papers", gomock.Any()).Return(nil).Times(1)

	if err := pipeline.IndexFile(ctx, "doc.md"); err != nil {
		t.Fatalf("first IndexFile() error: %v", err)
	}

	first, err := sources.GetByName(ctx, "doc")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}

	writeDoc(t, root, "doc.md", testDoc+"\nAn appended remark about consistency proofs and ordinals.\n")
	if err := pipeline.IndexFile(ctx, "doc.md"); err != nil {
		t.Fatalf("second IndexFile() error: %v", err)
	}

	second, err := sources.GetByName(ctx, "doc")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("source ID changed on re-index: %d -> %d", first.ID, second.ID)
	}
	if second.Hash == first.Hash {
		t.Error("hash not updated on re-index")
	}

	ids, err := chunks.ListIDsBySource(ctx, second.ID)
	if err != nil {
		t.Fatalf("ListIDsBySource() error: %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("no chunks after re-index")
	}
}

func TestPipeline_IndexDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, root, embedder, store, _, _ := setupPipeline(t, ctrl)
	writeDoc(t, root, "a.md", testDoc)
	writeDoc(t, root, "nested/b.md", testDoc)
	writeDoc(t, root, "ignored.txt", "not markdown")

	// Only the two markdown files are indexed.
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(embedAll).Times(2)
	store.EXPECT().Upsert(gomock.Any(), "papers", gomock.Any()).Return(nil).Times(2)

	if err := pipeline.IndexDir(context.Background()); err != nil {
		t.Fatalf("IndexDir() error: %v", err)
	}
}

func TestPipeline_IndexDir_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pipeline, root, embedder, store, _, _ := setupPipeline(t, ctrl)
	writeDoc(t, root, "a.md", testDoc)
	writeDoc(t, root, "b.md", testDoc+"\nExtra trailing text so the two documents hash differently.\n")

	// First file fails at embedding; the second still indexes.
	gomock.InOrder(
		embedder.EXPECT().
			EmbedTexts(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("embedding service down")),
		embedder.EXPECT().
			EmbedTexts(gomock.Any(), gomock.Any()).
			DoAndReturn(embedAll),
	)
	store.EXPECT().Upsert(gomock.Any(), "papers", gomock.Any()).Return(nil).Times(1)

	err := pipeline.IndexDir(context.Background())
	if err == nil {
		t.Fatal("IndexDir() should report the failed file")
	}
}
