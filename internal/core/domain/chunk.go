package domain

// Metadata keys shared between chunking, indexing and retrieval.
const (
	MetaChunkType  = "chunk_type"
	MetaParentID   = "parent_id"
	MetaFilename   = "filename"
	MetaPageNumber = "page"

	ChunkTypeParent = "parent"
	ChunkTypeChild  = "child"
)

// DocumentPage is a single page or logical section of a loaded document.
type DocumentPage struct {
	Text       string         `json:"text"`
	PageNumber int            `json:"page_number"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// LoadedDocument is the loader output handed to the chunker.
type LoadedDocument struct {
	Pages      []DocumentPage `json:"pages"`
	Filename   string         `json:"filename"`
	FileType   string         `json:"file_type"`
	TotalPages int            `json:"total_pages"`
}

// Chunk is an immutable span of document text. Parent chunks have an empty
// ParentID; every child chunk references a parent produced in the same run.
type Chunk struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	ParentID string         `json:"parent_id,omitempty"`
}

// ChunkedDocument is the two-level chunking result for one document.
type ChunkedDocument struct {
	ParentChunks []Chunk `json:"parent_chunks"`
	ChildChunks  []Chunk `json:"child_chunks"`
	Filename     string  `json:"filename"`
}
