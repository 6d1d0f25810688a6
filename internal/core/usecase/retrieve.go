package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

// RetrieveConfig tunes the orchestrated pipeline.
type RetrieveConfig struct {
	TopK               int
	TranslationEnabled bool
}

// RetrieveUseCase sequences the full pipeline: optional translation, optional
// expansion, per-variant hybrid search, max-by-id merge, optional rerank,
// parent context resolution, and latency accounting. Expansion, translation
// and reranking are best-effort; only the search indexes themselves are
// load-bearing for the request.
type RetrieveUseCase struct {
	hybrid   *HybridSearch
	expander *QueryExpander // nil disables expansion and translation
	reranker *Reranker      // nil disables reranking
	parents  ports.ParentStore
	vectors  ports.VectorStore
	cfg      RetrieveConfig
	logger   *slog.Logger
}

func NewRetrieveUseCase(
	hybrid *HybridSearch,
	expander *QueryExpander,
	reranker *Reranker,
	parents ports.ParentStore,
	vectors ports.VectorStore,
	cfg RetrieveConfig,
	logger *slog.Logger,
) *RetrieveUseCase {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &RetrieveUseCase{
		hybrid:   hybrid,
		expander: expander,
		reranker: reranker,
		parents:  parents,
		vectors:  vectors,
		cfg:      cfg,
		logger:   logger,
	}
}

func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string, opts ports.RetrieveOptions) (*domain.RetrievalResult, error) {
	start := time.Now()
	k := opts.K
	if k <= 0 {
		k = uc.cfg.TopK
	}

	searchQuery := query
	if uc.cfg.TranslationEnabled && uc.expander != nil && detectQueryLanguage(query) != "" {
		searchQuery = uc.expander.TranslateQuery(ctx, query, uc.corpusSample(ctx))
	}

	queries := []string{searchQuery}
	if uc.expander != nil && (opts.UseHyde || opts.UseMultiQuery) {
		queries = uc.expander.Expand(ctx, searchQuery, opts.UseHyde, opts.UseMultiQuery)
	}

	// A chunk strongly matched by any one reformulation keeps its best
	// score; weak matches under other variants never penalize it.
	merged := make(map[string]domain.SearchResult)
	var order []string
	for _, q := range queries {
		results, err := uc.hybrid.Search(ctx, q, k*2)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			existing, seen := merged[r.ChunkID]
			if !seen {
				order = append(order, r.ChunkID)
				merged[r.ChunkID] = r
				continue
			}
			if r.Score > existing.Score {
				merged[r.ChunkID] = r
			}
		}
	}

	candidates := make([]domain.SearchResult, 0, len(merged))
	for _, id := range order {
		candidates = append(candidates, merged[id])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	totalCandidates := len(candidates)

	var results []domain.SearchResult
	if uc.reranker != nil && len(candidates) > 0 {
		// Rerank against the original, untranslated query: reranking
		// reflects literal user intent, not an expansion artifact.
		results = uc.reranker.Rerank(ctx, query, candidates, k)
	} else {
		n := k
		if n > len(candidates) {
			n = len(candidates)
		}
		results = make([]domain.SearchResult, n)
		copy(results, candidates[:n])
	}

	parentContext := uc.resolveParentContext(ctx, results)

	latency := float64(time.Since(start).Microseconds()) / 1000.0
	uc.logger.Info("retrieval complete",
		"results", len(results),
		"candidates", totalCandidates,
		"queries", len(queries),
		"latency_ms", latency,
	)

	return &domain.RetrievalResult{
		Results:         results,
		ExpandedQueries: queries,
		LatencyMS:       latency,
		TotalCandidates: totalCandidates,
		ParentContext:   parentContext,
	}, nil
}

// resolveParentContext fetches the distinct parent spans referenced by the
// result set. Chunks without a parent are simply absent from the map.
func (uc *RetrieveUseCase) resolveParentContext(ctx context.Context, results []domain.SearchResult) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range results {
		pid := r.ParentID()
		if pid == "" {
			continue
		}
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		ids = append(ids, pid)
	}
	if len(ids) == 0 {
		return map[string]string{}
	}

	texts, err := uc.parents.GetParentTexts(ctx, ids)
	if err != nil {
		uc.logger.Warn("parent context lookup failed", "error", err)
		return map[string]string{}
	}
	return texts
}

// corpusSample reads one stored chunk to hint at the corpus language. It is
// only consulted after the query script suggests a language mismatch, so
// Latin-script queries never pay for the extra store read.
func (uc *RetrieveUseCase) corpusSample(ctx context.Context) string {
	chunks, err := uc.vectors.Scroll(ctx, domain.ChunkFilter{}, 1)
	if err != nil || len(chunks) == 0 {
		return ""
	}
	return chunks[0].Text
}
