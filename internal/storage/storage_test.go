package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// setupTestDB creates a migrated SQLite database in a temp directory.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := Migrate(db); err != nil {
		t.Errorf("second Migrate() error: %v", err)
	}
}

func TestSourceRepo_CreateAndGetByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepo(db)
	ctx := context.Background()

	source := &SourceRecord{
		Name:    "papers/goedel-1931",
		RelPath: "papers/goedel-1931.md",
		Hash:    "abc123",
	}
	if err := repo.Create(ctx, source); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if source.ID == 0 {
		t.Error("Create() did not set ID")
	}

	got, err := repo.GetByName(ctx, "papers/goedel-1931")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}
	if got.ID != source.ID {
		t.Errorf("GetByName() ID = %d, want %d", got.ID, source.ID)
	}
	if got.RelPath != source.RelPath || got.Hash != source.Hash {
		t.Errorf("GetByName() = %+v, want %+v", got, source)
	}
	if got.CreatedAt.IsZero() {
		t.Error("GetByName() CreatedAt is zero")
	}
}

func TestSourceRepo_GetByName_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepo(db)

	_, err := repo.GetByName(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
}

func TestSourceRepo_Create_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepo(db)
	ctx := context.Background()

	first := &SourceRecord{Name: "dup", RelPath: "dup.md", Hash: "h1"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	second := &SourceRecord{Name: "dup", RelPath: "dup.md", Hash: "h2"}
	if err := repo.Create(ctx, second); err == nil {
		t.Error("Create() with duplicate name should return error")
	}
}

func TestSourceRepo_UpdateHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSourceRepo(db)
	ctx := context.Background()

	source := &SourceRecord{Name: "s", RelPath: "s.md", Hash: "old"}
	if err := repo.Create(ctx, source); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := repo.UpdateHash(ctx, source.ID, "new"); err != nil {
		t.Fatalf("UpdateHash() error: %v", err)
	}

	got, err := repo.GetByName(ctx, "s")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}
	if got.Hash != "new" {
		t.Errorf("Hash = %q, want %q", got.Hash, "new")
	}

	if err := repo.UpdateHash(ctx, 9999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateHash() on missing ID error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_InsertAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	sources := NewSourceRepo(db)
	chunks := NewChunkRepo(db)
	ctx := context.Background()

	source := &SourceRecord{Name: "s", RelPath: "s.md", Hash: "h"}
	if err := sources.Create(ctx, source); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	chunk := &ChunkRecord{
		ID:         "11111111-1111-1111-1111-111111111111",
		SourceID:   source.ID,
		ChunkIndex: 0,
		Section:    "# Background",
		Text:       "Entropy is a measure of disorder.",
	}
	if err := chunks.Insert(ctx, chunk); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	got, err := chunks.GetByID(ctx, chunk.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Text != chunk.Text || got.Section != chunk.Section || got.SourceID != source.ID {
		t.Errorf("GetByID() = %+v, want %+v", got, chunk)
	}
}

func TestChunkRepo_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	chunks := NewChunkRepo(db)

	_, err := chunks.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_ListIDsBySource_Ordering(t *testing.T) {
	db := setupTestDB(t)
	sources := NewSourceRepo(db)
	chunks := NewChunkRepo(db)
	ctx := context.Background()

	source := &SourceRecord{Name: "s", RelPath: "s.md", Hash: "h"}
	if err := sources.Create(ctx, source); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Insert out of order; listing must come back ordered by chunk_index.
	for _, c := range []ChunkRecord{
		{ID: "id-2", SourceID: source.ID, ChunkIndex: 2, Text: "c"},
		{ID: "id-0", SourceID: source.ID, ChunkIndex: 0, Text: "a"},
		{ID: "id-1", SourceID: source.ID, ChunkIndex: 1, Text: "b"},
	} {
		if err := chunks.Insert(ctx, &c); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}

	ids, err := chunks.ListIDsBySource(ctx, source.ID)
	if err != nil {
		t.Fatalf("ListIDsBySource() error: %v", err)
	}
	want := []string{"id-0", "id-1", "id-2"}
	if len(ids) != len(want) {
		t.Fatalf("ListIDsBySource() returned %d IDs, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestChunkRepo_DeleteBySource(t *testing.T) {
	db := setupTestDB(t)
	sources := NewSourceRepo(db)
	chunks := NewChunkRepo(db)
	ctx := context.Background()

	source := &SourceRecord{Name: "s", RelPath: "s.md", Hash: "h"}
	if err := sources.Create(ctx, source); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := chunks.Insert(ctx, &ChunkRecord{ID: "id-0", SourceID: source.ID, Text: "a"}); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	if err := chunks.DeleteBySource(ctx, source.ID); err != nil {
		t.Fatalf("DeleteBySource() error: %v", err)
	}

	ids, err := chunks.ListIDsBySource(ctx, source.ID)
	if err != nil {
		t.Fatalf("ListIDsBySource() error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no chunks after delete, got %d", len(ids))
	}
}
