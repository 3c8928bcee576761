package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// SourceRecord is a corpus document tracked in the database.
type SourceRecord struct {
	ID        int
	Name      string // Unique source name (derived from the relative path)
	RelPath   string // Relative path from the corpus root
	Hash      string // SHA256 hex string of file content
	CreatedAt time.Time
}

// ChunkRecord is a chunk of text from a source, indexed for vector search.
type ChunkRecord struct {
	ID         string // UUID (same as the Qdrant point ID)
	SourceID   int    // Foreign key to sources.id
	ChunkIndex int    // Index within the source (starts at 0)
	Section    string // Heading path, e.g. "# Background > ## Notation"
	Text       string
}
