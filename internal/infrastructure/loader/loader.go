package loader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

// Loader reads a stored source file and extracts pages of plain text,
// dispatching on the file extension.
type Loader struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Loader {
	return &Loader{storage: storage}
}

func (l *Loader) Load(ctx context.Context, doc *domain.Document) (*domain.LoadedDocument, error) {
	reader, err := l.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	switch ext := fileExtension(doc.Filename); ext {
	case "pdf":
		return loadPDF(raw, doc.Filename)
	case "xlsx":
		return loadXLSX(raw, doc.Filename)
	case "txt", "md", "text":
		return loadText(raw, doc.Filename)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "load document",
			fmt.Errorf("unsupported file type: %q", ext))
	}
}

func fileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func pageMetadata(filename string, page int) map[string]any {
	return map[string]any{
		domain.MetaFilename:   filename,
		domain.MetaPageNumber: page,
	}
}
