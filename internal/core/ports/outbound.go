package ports

import (
	"context"
	"io"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// Embedder builds dense vectors for chunk and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists child chunk embeddings and serves similarity search.
// Scroll reads raw stored chunks for lexical index builds and ingest checks.
type VectorStore interface {
	UpsertChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Nearest(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error)
	Scroll(ctx context.Context, filter domain.ChunkFilter, limit int) ([]domain.StoredChunk, error)
}

// LexicalIndex is the process-wide keyword index over the stored corpus.
// Implementations build lazily on first search and cache until Invalidate.
type LexicalIndex interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	Invalidate()
}

// TextGenerator is the external language model used for query expansion,
// translation and language detection.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}

// RelevanceScorer re-scores (query, passage) pairs for reranking.
type RelevanceScorer interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

// ParentStore persists parent chunks and resolves their text by id.
type ParentStore interface {
	SaveParents(ctx context.Context, documentID string, parents []domain.Chunk) error
	GetParentTexts(ctx context.Context, ids []string) (map[string]string, error)
}

// DocumentRepository persists the ingestion registry.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveChunkCounts(ctx context.Context, id string, pages, parentChunks, childChunks int) error
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document-ingested events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentLoader turns a stored source file into pages of plain text.
type DocumentLoader interface {
	Load(ctx context.Context, doc *domain.Document) (*domain.LoadedDocument, error)
}

// Chunker splits a loaded document into the parent/child hierarchy.
type Chunker interface {
	Chunk(doc *domain.LoadedDocument) (*domain.ChunkedDocument, error)
}
