package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_source_store.go -package=mocks scholar-ai/internal/storage SourceStore

import (
	"context"
	"database/sql"
	"fmt"
)

// SourceStore defines the interface for source document operations.
type SourceStore interface {
	// GetByName gets a source by its unique name.
	// Returns nil and ErrNotFound if not found.
	GetByName(ctx context.Context, name string) (*SourceRecord, error)
	// Create inserts a new source and sets its ID.
	Create(ctx context.Context, source *SourceRecord) error
	// UpdateHash updates the stored content hash for a source.
	UpdateHash(ctx context.Context, id int, hash string) error
}

// SourceRepo provides methods for source operations.
// It implements the SourceStore interface.
type SourceRepo struct {
	db *sql.DB
}

// NewSourceRepo creates a new SourceRepo.
func NewSourceRepo(db *sql.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// GetByName gets a source by its unique name.
// Returns nil and ErrNotFound if not found.
func (r *SourceRepo) GetByName(ctx context.Context, name string) (*SourceRecord, error) {
	var source SourceRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, rel_path, hash, created_at FROM sources WHERE name = ?",
		name,
	).Scan(&source.ID, &source.Name, &source.RelPath, &source.Hash, &source.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	return &source, nil
}

// Create inserts a new source and sets its ID.
func (r *SourceRepo) Create(ctx context.Context, source *SourceRecord) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO sources (name, rel_path, hash) VALUES (?, ?, ?)",
		source.Name, source.RelPath, source.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted source ID: %w", err)
	}
	source.ID = int(id)

	return nil
}

// UpdateHash updates the stored content hash for a source.
func (r *SourceRepo) UpdateHash(ctx context.Context, id int, hash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE sources SET hash = ? WHERE id = ?",
		hash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update source hash: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
