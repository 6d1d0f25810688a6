package ports

import (
	"context"
	"io"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// RetrieveOptions tune one retrieval pipeline invocation.
type RetrieveOptions struct {
	K             int
	UseHyde       bool
	UseMultiQuery bool
}

// Retriever is the inbound contract for the retrieval pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts RetrieveOptions) (*domain.RetrievalResult, error)
}

// DocumentIngestor is the inbound contract for document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) (*domain.IngestReport, error)
}

// DocumentReader is the inbound read model for registry records.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
