package loader

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// Plain text has no page structure; paragraphs are grouped into logical
// pages of roughly this many characters so downstream chunking and page
// provenance behave the same as for paginated formats.
const logicalPageSize = 3000

func loadText(raw []byte, filename string) (*domain.LoadedDocument, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("file is not valid utf-8 text: %s", filename)
	}

	var pages []domain.DocumentPage
	pageNumber := 1
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text == "" {
			return
		}
		pages = append(pages, domain.DocumentPage{
			Text:       text,
			PageNumber: pageNumber,
			Metadata:   pageMetadata(filename, pageNumber),
		})
		pageNumber++
	}

	for _, para := range strings.Split(string(raw), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		current.WriteString(para)
		current.WriteString("\n\n")
		if current.Len() >= logicalPageSize {
			flush()
		}
	}
	flush()

	return &domain.LoadedDocument{
		Pages:      pages,
		Filename:   filename,
		FileType:   "text",
		TotalPages: len(pages),
	}, nil
}
