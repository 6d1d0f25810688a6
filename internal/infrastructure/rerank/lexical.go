package rerank

import (
	"context"
	"strings"
	"unicode"
)

// LexicalScorer is a cheap deterministic relevance model: it scores each
// passage by the fraction of query tokens it contains, with a small bonus
// for consecutive query terms appearing as a phrase. It serves as the
// default reranking collaborator; precision-oriented deployments can swap
// in a cross-encoder behind the same port.
type LexicalScorer struct{}

func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

const phraseBonus = 0.25

func (s *LexicalScorer) Score(_ context.Context, query string, passages []string) ([]float64, error) {
	queryTokens := splitAlphaNumLower(query)
	querySet := toTokenSet(queryTokens)

	scores := make([]float64, len(passages))
	for i, passage := range passages {
		passageSet := tokenSet(passage)
		score := tokenOverlap(querySet, passageSet)
		if len(queryTokens) > 1 && containsPhrase(passage, queryTokens) {
			score += phraseBonus
		}
		scores[i] = score
	}
	return scores, nil
}

func tokenOverlap(query, passage map[string]struct{}) float64 {
	if len(query) == 0 || len(passage) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := passage[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func containsPhrase(passage string, queryTokens []string) bool {
	return strings.Contains(
		strings.Join(splitAlphaNumLower(passage), " "),
		strings.Join(queryTokens, " "),
	)
}

func tokenSet(s string) map[string]struct{} {
	return toTokenSet(splitAlphaNumLower(s))
}

func toTokenSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
