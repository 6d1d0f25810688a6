package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

// overFetchFactor gives the weaker signal a chance to surface matches the
// other missed before fusion truncates.
const overFetchFactor = 3

const DefaultAlpha = 0.6

// HybridSearch combines lexical BM25 search with dense vector search under
// a tunable alpha weight (alpha toward 1 favors semantic similarity).
type HybridSearch struct {
	embedder ports.Embedder
	vectors  ports.VectorStore
	lexical  ports.LexicalIndex
	alpha    float64
	logger   *slog.Logger
}

func NewHybridSearch(
	embedder ports.Embedder,
	vectors ports.VectorStore,
	lexical ports.LexicalIndex,
	alpha float64,
	logger *slog.Logger,
) *HybridSearch {
	if alpha < 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &HybridSearch{
		embedder: embedder,
		vectors:  vectors,
		lexical:  lexical,
		alpha:    alpha,
		logger:   logger,
	}
}

// Search runs both signals and fuses them into one ranking of length <= k.
// Either search failing is fatal for the request; there is no degraded
// single-signal mode.
func (h *HybridSearch) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = 5
	}
	fetchK := k * overFetchFactor

	vectorResults, err := h.vectorSearch(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}

	lexicalResults, err := h.lexical.Search(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}

	fused := fuseHybrid(vectorResults, lexicalResults, h.alpha, k)
	h.logger.Debug("hybrid search",
		"query_len", len(query),
		"vector_hits", len(vectorResults),
		"lexical_hits", len(lexicalResults),
		"fused", len(fused),
	)
	return fused, nil
}

func (h *HybridSearch) vectorSearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	vector, err := h.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := h.vectors.Nearest(ctx, vector, k)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "vector search", err)
	}

	out := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		out = append(out, domain.SearchResult{
			ChunkID:  hit.ChunkID,
			Text:     hit.Text,
			Score:    1 - hit.Distance,
			Metadata: hit.Metadata,
		})
	}
	return out, nil
}
