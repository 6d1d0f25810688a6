package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legalmind/legalmind/internal/core/ports"
)

const (
	hydeSystemPrompt = "Given the question, write a short hypothetical passage " +
		"that would answer this question in the context of a legal contract. " +
		"The passage should sound like it comes from an actual contract clause."

	multiQuerySystemPrompt = "Generate 3 alternative versions of this question " +
		"that could help retrieve relevant information from a legal contract. " +
		"Each version should approach the question from a different angle.\n\n" +
		"Return only the 3 questions, one per line."

	detectLanguageSystemPrompt = "Detect the language of this text. Reply with " +
		"only the language name in English (e.g. 'English', 'Slovak', 'Russian')."

	maxMultiQueries = 3
)

// QueryExpander rewrites and augments queries through the generation model.
// Every capability is best-effort: a failed expansion degrades to fewer
// query variants, never to a failed retrieval.
type QueryExpander struct {
	generator  ports.TextGenerator
	logger     *slog.Logger
	onFallback func(stage string)
}

func NewQueryExpander(generator ports.TextGenerator, logger *slog.Logger) *QueryExpander {
	return &QueryExpander{generator: generator, logger: logger}
}

// SetFallbackHook registers a callback fired whenever an expansion stage
// degrades to the original query.
func (e *QueryExpander) SetFallbackHook(fn func(stage string)) {
	e.onFallback = fn
}

func (e *QueryExpander) fallback(stage string) {
	if e.onFallback != nil {
		e.onFallback(stage)
	}
}

// Expand returns the list of query strings to search. The original query is
// always the first element so it survives any expansion failure.
func (e *QueryExpander) Expand(ctx context.Context, query string, useHyde, useMulti bool) []string {
	queries := []string{query}

	if useHyde {
		passage, err := e.Hyde(ctx, query)
		if err != nil {
			e.logger.Warn("hyde expansion failed", "error", err)
			e.fallback("hyde")
		} else if passage != "" {
			queries = append(queries, passage)
		}
	}

	if useMulti {
		variants, err := e.MultiQuery(ctx, query)
		if err != nil {
			e.logger.Warn("multi-query expansion failed", "error", err)
			e.fallback("multi_query")
		} else {
			queries = append(queries, variants...)
		}
	}

	return queries
}

// Hyde generates a hypothetical contract passage that would answer the
// query. Its lexical and semantic profile resembles stored clauses more
// closely than a question does, so it makes a stronger search string.
func (e *QueryExpander) Hyde(ctx context.Context, query string) (string, error) {
	passage, err := e.generator.Complete(ctx, hydeSystemPrompt, query, 0.7, 200)
	if err != nil {
		return "", fmt.Errorf("hyde generation: %w", err)
	}
	return strings.TrimSpace(passage), nil
}

// MultiQuery generates up to 3 alternative phrasings of the query.
func (e *QueryExpander) MultiQuery(ctx context.Context, query string) ([]string, error) {
	text, err := e.generator.Complete(ctx, multiQuerySystemPrompt, query, 0.7, 300)
	if err != nil {
		return nil, fmt.Errorf("multi-query generation: %w", err)
	}
	return parseQueryLines(text), nil
}

// parseQueryLines reads newline-separated variants, stripping leading
// enumeration markup, and caps the result even when more lines come back.
// Malformed output parses to zero variants rather than an error.
func parseQueryLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.-) ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxMultiQueries {
			break
		}
	}
	return out
}

// TranslateQuery handles cross-language retrieval. A script-ratio heuristic
// decides whether the query plausibly differs from the corpus language; only
// then is the corpus language detected and a translation requested. Any
// failure along the way returns the original query untranslated.
func (e *QueryExpander) TranslateQuery(ctx context.Context, query, corpusSample string) string {
	queryLang := detectQueryLanguage(query)
	if queryLang == "" || strings.TrimSpace(corpusSample) == "" {
		return query
	}

	corpusLang, err := e.detectLanguage(ctx, corpusSample)
	if err != nil {
		e.logger.Warn("corpus language detection failed", "error", err)
		e.fallback("language_detection")
		return query
	}
	if corpusLang == "" || strings.EqualFold(corpusLang, queryLang) {
		return query
	}

	system := fmt.Sprintf(
		"Translate the following text to %s. Keep legal terminology accurate. Return only the translation, nothing else.",
		corpusLang,
	)
	translated, err := e.generator.Complete(ctx, system, query, 0, 300)
	if err != nil {
		e.logger.Warn("query translation failed", "error", err)
		e.fallback("translation")
		return query
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return query
	}

	e.logger.Info("cross-language query translation", "from", queryLang, "to", corpusLang)
	return translated
}

func (e *QueryExpander) detectLanguage(ctx context.Context, text string) (string, error) {
	sample := []rune(text)
	if len(sample) > 200 {
		sample = sample[:200]
	}
	lang, err := e.generator.Complete(ctx, detectLanguageSystemPrompt, string(sample), 0, 10)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(lang), nil
}

// detectQueryLanguage is a coarse script-ratio hint, not a classifier: a
// mostly-Cyrillic query reads as Russian, anything Latin-dominated is left
// alone since it could be English, Slovak or another Latin-script language.
func detectQueryLanguage(query string) string {
	cyrillic, latin := 0, 0
	for _, r := range query {
		switch {
		case r >= 0x0400 && r <= 0x04FF:
			cyrillic++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}
	if cyrillic > latin {
		return "Russian"
	}
	return ""
}
