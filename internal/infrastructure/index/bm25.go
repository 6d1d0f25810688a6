package index

import (
	"math"
	"sort"
	"strings"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// Okapi BM25 parameters, library defaults.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25Index is a term-frequency index over the full stored corpus. Scores
// are raw and unnormalized; callers normalize per candidate set.
type bm25Index struct {
	ids    []string
	texts  []string
	metas  []map[string]any
	termTF []map[string]int
	docLen []int
	avgLen float64
	idf    map[string]float64
}

// tokenize is intentionally simple: lowercase, whitespace split. No stemming
// or stopword removal, so lexical behavior stays reproducible.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func buildBM25(corpus []domain.StoredChunk) *bm25Index {
	idx := &bm25Index{
		ids:    make([]string, 0, len(corpus)),
		texts:  make([]string, 0, len(corpus)),
		metas:  make([]map[string]any, 0, len(corpus)),
		termTF: make([]map[string]int, 0, len(corpus)),
		docLen: make([]int, 0, len(corpus)),
		idf:    make(map[string]float64),
	}

	docFreq := make(map[string]int)
	totalLen := 0
	for _, chunk := range corpus {
		tokens := tokenize(chunk.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			docFreq[tok]++
		}

		idx.ids = append(idx.ids, chunk.ID)
		idx.texts = append(idx.texts, chunk.Text)
		idx.metas = append(idx.metas, chunk.Metadata)
		idx.termTF = append(idx.termTF, tf)
		idx.docLen = append(idx.docLen, len(tokens))
		totalLen += len(tokens)
	}

	n := len(corpus)
	if n == 0 {
		return idx
	}
	idx.avgLen = float64(totalLen) / float64(n)

	// Standard Okapi idf with an epsilon floor for terms present in more
	// than half the corpus, keeping every query term a positive signal.
	idfSum := 0.0
	var negative []string
	for term, df := range docFreq {
		idf := math.Log(float64(n)-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idx.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	eps := bm25Epsilon * idfSum / float64(len(docFreq))
	for _, term := range negative {
		idx.idf[term] = eps
	}

	return idx
}

func (idx *bm25Index) size() int { return len(idx.ids) }

// search scores every corpus document against the query and returns the top
// k with raw BM25 scores, ties broken by corpus insertion order.
func (idx *bm25Index) search(query string, k int) []domain.SearchResult {
	if idx.size() == 0 || k <= 0 {
		return nil
	}

	queryTokens := tokenize(query)
	scores := make([]float64, idx.size())
	for i := range idx.ids {
		norm := bm25K1 * (1 - bm25B + bm25B*float64(idx.docLen[i])/idx.avgLen)
		for _, tok := range queryTokens {
			tf := float64(idx.termTF[i][tok])
			if tf == 0 {
				continue
			}
			scores[i] += idx.idf[tok] * tf * (bm25K1 + 1) / (tf + norm)
		}
	}

	order := make([]int, idx.size())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k < len(order) {
		order = order[:k]
	}

	out := make([]domain.SearchResult, 0, len(order))
	for _, i := range order {
		out = append(out, domain.SearchResult{
			ChunkID:  idx.ids[i],
			Text:     idx.texts[i],
			Score:    scores[i],
			Metadata: idx.metas[i],
		})
	}
	return out
}
