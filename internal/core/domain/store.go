package domain

// VectorHit is one nearest-neighbor match from the vector store. Distance is
// a cosine distance in [0, 2]; similarity is derived as 1 - distance.
type VectorHit struct {
	ChunkID  string
	Text     string
	Metadata map[string]any
	Distance float64
}

// StoredChunk is a raw corpus entry read back from the vector store, used to
// rebuild the lexical index and to detect already-ingested documents.
type StoredChunk struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// ChunkFilter narrows Scroll reads. The zero value matches the whole corpus.
type ChunkFilter struct {
	Filename string
}
