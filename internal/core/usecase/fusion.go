package usecase

import (
	"sort"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// minMaxNormalize maps a score column onto [0, 1]. A degenerate set whose
// max equals its min (single result or all tied) normalizes to all 1.0.
func minMaxNormalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	minS, maxS := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minS {
			minS = s
		}
		if s > maxS {
			maxS = s
		}
	}

	out := make([]float64, len(scores))
	if maxS == minS {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	for i, s := range scores {
		out[i] = (s - minS) / (maxS - minS)
	}
	return out
}

func normalizeResults(results []domain.SearchResult) []domain.SearchResult {
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	norm := minMaxNormalize(scores)

	out := make([]domain.SearchResult, len(results))
	for i, r := range results {
		r.Score = norm[i]
		out[i] = r
	}
	return out
}

// fuseHybrid merges the vector and lexical result sets into one ranking.
// Each set is min-max normalized independently, the sets are unioned by
// chunk id with a missing side scored 0.0, and the final score is
// alpha*vector + (1-alpha)*lexical. The descending sort is stable so ties
// keep insertion order, and the ranking is truncated to k.
func fuseHybrid(vectorResults, lexicalResults []domain.SearchResult, alpha float64, k int) []domain.SearchResult {
	vectorResults = normalizeResults(vectorResults)
	lexicalResults = normalizeResults(lexicalResults)

	type fusedEntry struct {
		result   domain.SearchResult
		vecScore float64
		lexScore float64
	}

	byID := make(map[string]int, len(vectorResults)+len(lexicalResults))
	entries := make([]fusedEntry, 0, len(vectorResults)+len(lexicalResults))

	for _, r := range vectorResults {
		byID[r.ChunkID] = len(entries)
		entries = append(entries, fusedEntry{result: r, vecScore: r.Score})
	}
	for _, r := range lexicalResults {
		if i, ok := byID[r.ChunkID]; ok {
			entries[i].lexScore = r.Score
			continue
		}
		byID[r.ChunkID] = len(entries)
		entries = append(entries, fusedEntry{result: r, lexScore: r.Score})
	}

	fused := make([]domain.SearchResult, 0, len(entries))
	for _, e := range entries {
		r := e.result
		r.Score = alpha*e.vecScore + (1-alpha)*e.lexScore
		fused = append(fused, r)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	if k > 0 && len(fused) > k {
		fused = fused[:k]
	}
	return fused
}
