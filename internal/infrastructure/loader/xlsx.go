package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// loadXLSX flattens each sheet into one logical page, row per line. Many
// contract registers and clause inventories arrive as spreadsheets.
func loadXLSX(raw []byte, filename string) (*domain.LoadedDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer f.Close()

	var pages []domain.DocumentPage
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		var lines []string
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}

		pageNumber := i + 1
		meta := pageMetadata(filename, pageNumber)
		meta["sheet"] = sheet
		pages = append(pages, domain.DocumentPage{
			Text:       strings.Join(lines, "\n"),
			PageNumber: pageNumber,
			Metadata:   meta,
		})
	}

	return &domain.LoadedDocument{
		Pages:      pages,
		Filename:   filename,
		FileType:   "xlsx",
		TotalPages: len(pages),
	}, nil
}
