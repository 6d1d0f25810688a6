package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

const embedBatchSize = 100

// ProcessDocumentUseCase runs the ingestion-side pipeline for one uploaded
// document: load pages, chunk into the parent/child hierarchy, embed child
// chunks in batches, index them, persist parent spans, and invalidate the
// lexical index so the next query sees the new corpus.
type ProcessDocumentUseCase struct {
	repo     ports.DocumentRepository
	loader   ports.DocumentLoader
	chunker  ports.Chunker
	embedder ports.Embedder
	vectors  ports.VectorStore
	parents  ports.ParentStore
	lexical  ports.LexicalIndex
	logger   *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	loader ports.DocumentLoader,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectors ports.VectorStore,
	parents ports.ParentStore,
	lexical ports.LexicalIndex,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:     repo,
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		vectors:  vectors,
		parents:  parents,
		lexical:  lexical,
		logger:   logger,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (*domain.IngestReport, error) {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}

	report, status, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, status, ""); err != nil {
		return nil, fmt.Errorf("set status=%s: %w", status, err)
	}
	return report, nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.IngestReport, domain.DocumentStatus, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document by id: %w", err)
	}

	already, err := uc.alreadyIngested(ctx, doc.Filename)
	if err != nil {
		return nil, "", err
	}
	if already {
		uc.logger.Warn("document already ingested, skipping", "filename", doc.Filename)
		return &domain.IngestReport{
			Document:    domain.ChunkedDocument{Filename: doc.Filename},
			CountStored: 0,
		}, domain.StatusSkipped, nil
	}

	loaded, err := uc.loader.Load(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("load document: %w", err)
	}

	chunked, err := uc.chunker.Chunk(loaded)
	if err != nil {
		return nil, "", fmt.Errorf("chunk document: %w", err)
	}
	if len(chunked.ChildChunks) == 0 {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero child chunks"))
	}

	stored, err := uc.embedAndIndex(ctx, chunked.ChildChunks)
	if err != nil {
		return nil, "", err
	}

	if err := uc.parents.SaveParents(ctx, doc.ID, chunked.ParentChunks); err != nil {
		return nil, "", fmt.Errorf("persist parent chunks: %w", err)
	}

	if err := uc.repo.SaveChunkCounts(ctx, doc.ID, len(loaded.Pages), len(chunked.ParentChunks), len(chunked.ChildChunks)); err != nil {
		return nil, "", fmt.Errorf("save chunk counts: %w", err)
	}

	// The lexical cache is stale until the next explicit rebuild; this is
	// the one place that triggers it.
	uc.lexical.Invalidate()

	uc.logger.Info("document indexed",
		"filename", doc.Filename,
		"pages", len(loaded.Pages),
		"parent_chunks", len(chunked.ParentChunks),
		"child_chunks", stored,
	)

	return &domain.IngestReport{Document: *chunked, CountStored: stored}, domain.StatusIndexed, nil
}

func (uc *ProcessDocumentUseCase) alreadyIngested(ctx context.Context, filename string) (bool, error) {
	existing, err := uc.vectors.Scroll(ctx, domain.ChunkFilter{Filename: filename}, 1)
	if err != nil {
		return false, fmt.Errorf("check existing chunks: %w", err)
	}
	return len(existing) > 0, nil
}

func (uc *ProcessDocumentUseCase) embedAndIndex(ctx context.Context, children []domain.Chunk) (int, error) {
	stored := 0
	for start := 0; start < len(children); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(children) {
			end = len(children)
		}
		batch := children[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return stored, fmt.Errorf("embed chunk batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return stored, domain.WrapError(
				domain.ErrInvalidInput,
				"embed chunk batch",
				fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(batch)),
			)
		}

		if err := uc.vectors.UpsertChunks(ctx, batch, vectors); err != nil {
			return stored, fmt.Errorf("index chunk batch: %w", err)
		}
		stored += len(batch)
	}
	return stored, nil
}
