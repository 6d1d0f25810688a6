package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

// Reranker re-scores a candidate set with a secondary relevance model. It
// must never fail a retrieval: on any scoring problem the pre-rerank
// ordering is kept and truncated instead.
type Reranker struct {
	scorer     ports.RelevanceScorer
	logger     *slog.Logger
	onFallback func()
}

func NewReranker(scorer ports.RelevanceScorer, logger *slog.Logger) *Reranker {
	return &Reranker{scorer: scorer, logger: logger}
}

// SetFallbackHook registers a callback fired whenever scoring fails and the
// fused ordering is kept.
func (r *Reranker) SetFallbackHook(fn func()) {
	r.onFallback = fn
}

func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.SearchResult, topN int) []domain.SearchResult {
	if len(candidates) == 0 {
		return []domain.SearchResult{}
	}
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Text
	}

	scores, err := r.scorer.Score(ctx, query, passages)
	if err != nil || len(scores) != len(candidates) {
		r.logger.Warn("reranking failed, keeping fused order",
			"error", err,
			"scores", len(scores),
			"candidates", len(candidates),
		)
		if r.onFallback != nil {
			r.onFallback()
		}
		out := make([]domain.SearchResult, topN)
		copy(out, candidates[:topN])
		return out
	}

	reranked := make([]domain.SearchResult, len(candidates))
	for i, c := range candidates {
		c.Score = scores[i]
		reranked[i] = c
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	return reranked[:topN]
}
