package chunking

import (
	"github.com/google/uuid"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// HierarchicalChunker produces the two-level parent/child hierarchy: large
// parent spans for context, small child spans for precise matching. Parents
// default to 3x the child size with 2x the child overlap.
type HierarchicalChunker struct {
	parents  *RecursiveSplitter
	children *RecursiveSplitter
}

type Params struct {
	ParentSize    int
	ParentOverlap int
	ChildSize     int
	ChildOverlap  int
}

func NewHierarchicalChunker(params Params) *HierarchicalChunker {
	if params.ChildSize <= 0 {
		params.ChildSize = 512
	}
	if params.ChildOverlap < 0 {
		params.ChildOverlap = 0
	}
	if params.ParentSize <= 0 {
		params.ParentSize = params.ChildSize * 3
	}
	if params.ParentOverlap <= 0 {
		params.ParentOverlap = params.ChildOverlap * 2
	}
	return &HierarchicalChunker{
		parents:  NewRecursiveSplitter(params.ParentSize, params.ParentOverlap),
		children: NewRecursiveSplitter(params.ChildSize, params.ChildOverlap),
	}
}

func (c *HierarchicalChunker) Chunk(doc *domain.LoadedDocument) (*domain.ChunkedDocument, error) {
	out := &domain.ChunkedDocument{Filename: doc.Filename}

	for _, page := range doc.Pages {
		for _, parentText := range c.parents.Split(page.Text) {
			parentID := uuid.NewString()
			out.ParentChunks = append(out.ParentChunks, domain.Chunk{
				ID:       parentID,
				Text:     parentText,
				Metadata: chunkMetadata(page, doc.Filename, domain.ChunkTypeParent, ""),
			})

			for _, childText := range c.children.Split(parentText) {
				out.ChildChunks = append(out.ChildChunks, domain.Chunk{
					ID:       uuid.NewString(),
					Text:     childText,
					ParentID: parentID,
					Metadata: chunkMetadata(page, doc.Filename, domain.ChunkTypeChild, parentID),
				})
			}
		}
	}
	return out, nil
}

func chunkMetadata(page domain.DocumentPage, filename, chunkType, parentID string) map[string]any {
	meta := make(map[string]any, len(page.Metadata)+4)
	for k, v := range page.Metadata {
		meta[k] = v
	}
	meta[domain.MetaChunkType] = chunkType
	meta[domain.MetaFilename] = filename
	meta[domain.MetaPageNumber] = page.PageNumber
	if parentID != "" {
		meta[domain.MetaParentID] = parentID
	}
	return meta
}
