package indexer

// Chunk is a slice of a corpus document.
type Chunk struct {
	Index   int    // Chunk index within the document (starts at 0)
	Section string // Heading path, e.g. "# Background > ## Notation"
	Text    string
}
