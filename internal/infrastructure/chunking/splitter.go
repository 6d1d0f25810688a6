package chunking

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators are tried in priority order: paragraph breaks, line
// breaks, sentence boundaries, spaces, then raw characters.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveSplitter splits text into spans of roughly ChunkSize runes with
// Overlap runes shared between consecutive spans. It recurses through the
// separator priority list until every fragment fits.
type RecursiveSplitter struct {
	ChunkSize  int
	Overlap    int
	separators []string
}

func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &RecursiveSplitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		separators: defaultSeparators,
	}
}

func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	sep := ""
	rest := []string{}
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	pieces := splitKeepingSeparator(text, sep)

	var out []string
	var pending []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			out = append(out, s.merge(pending)...)
			pending = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, s.merge(pending)...)
	}
	return out
}

// merge packs small pieces into chunks up to ChunkSize, then carries the
// trailing Overlap runes of each chunk into the next one.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		size := utf8.RuneCountInString(piece)
		if total+size > s.ChunkSize && len(window) > 0 {
			flush()
			for len(window) > 0 && (total > s.Overlap || total+size > s.ChunkSize) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += size
	}
	flush()
	return chunks
}

// splitKeepingSeparator keeps each separator attached to the preceding
// fragment so that re-joining fragments loses no source characters.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.SplitAfter(text, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
