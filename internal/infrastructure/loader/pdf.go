package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/legalmind/legalmind/internal/core/domain"
)

func loadPDF(raw []byte, filename string) (*domain.LoadedDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	totalPages := reader.NumPage()
	pages := make([]domain.DocumentPage, 0, totalPages)

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, domain.DocumentPage{
			Text:       text,
			PageNumber: i,
			Metadata:   pageMetadata(filename, i),
		})
	}

	return &domain.LoadedDocument{
		Pages:      pages,
		Filename:   filename,
		FileType:   "pdf",
		TotalPages: totalPages,
	}, nil
}
