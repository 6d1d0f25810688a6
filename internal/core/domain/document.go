package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusIndexed    DocumentStatus = "indexed"
	StatusSkipped    DocumentStatus = "skipped"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the ingestion registry record for one uploaded source file.
type Document struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	MimeType     string         `json:"mime_type"`
	StoragePath  string         `json:"storage_path"`
	Status       DocumentStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	Pages        int            `json:"pages"`
	ParentChunks int            `json:"parent_chunks"`
	ChildChunks  int            `json:"child_chunks"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IngestReport summarizes one processed document.
type IngestReport struct {
	Document    ChunkedDocument `json:"document"`
	CountStored int             `json:"count_stored"`
}
