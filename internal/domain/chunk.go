package domain

// Chunk represents a contiguous slice of a document's extracted text with
// its embedding vector. Chunks are written once at ingestion time and are
// immutable; they are removed only by cascading deletion of the document.
// All embeddings must share the dimension of the configured model.
type Chunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	Embedding  []float32
}

// RetrievedChunk is a chunk returned by nearest-neighbor search, joined
// with the identifying fields of its owning document.
type RetrievedChunk struct {
	Content      string
	DocumentID   string
	DocumentName string
	DocumentType DocumentType
	AircraftType string
}
