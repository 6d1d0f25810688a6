package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextStaysWhole(t *testing.T) {
	s := NewRecursiveSplitter(100, 10)
	got := s.Split("Short clause about notice periods.")
	if len(got) != 1 {
		t.Fatalf("expected single chunk, got %d: %v", len(got), got)
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewRecursiveSplitter(100, 10)
	if got := s.Split("   \n  "); got != nil {
		t.Fatalf("expected nil for blank text, got %v", got)
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := NewRecursiveSplitter(50, 10)
	text := strings.Repeat("The contract may be terminated by either party. ", 20)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 60 {
			t.Fatalf("chunk %d exceeds size budget: %d runes", i, utf8.RuneCountInString(c))
		}
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	para1 := "First paragraph about termination."
	para2 := "Second paragraph about payment."
	s := NewRecursiveSplitter(40, 0)

	chunks := s.Split(para1 + "\n\n" + para2)
	if len(chunks) != 2 {
		t.Fatalf("expected split at paragraph boundary, got %v", chunks)
	}
	if chunks[0] != para1 || chunks[1] != para2 {
		t.Fatalf("expected clean paragraphs, got %v", chunks)
	}
}

func TestSplitNoContentDropped(t *testing.T) {
	text := "Alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron pi rho sigma tau"
	s := NewRecursiveSplitter(30, 0)

	joined := strings.Join(s.Split(text), " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q lost during splitting", word)
		}
	}
}

func TestSplitOverlapCarriesTrailingContent(t *testing.T) {
	words := make([]string, 30)
	for i := range words {
		words[i] = "word" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")
	s := NewRecursiveSplitter(40, 15)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		head := strings.Fields(chunks[i])[0]
		if !strings.Contains(chunks[i-1], head) {
			t.Fatalf("chunk %d does not overlap its predecessor: %q vs %q", i, chunks[i-1], chunks[i])
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("Clause body with several words in it. ", 10)
	s := NewRecursiveSplitter(60, 12)

	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic chunk %d", i)
		}
	}
}

func TestNewRecursiveSplitterClampsOverlap(t *testing.T) {
	s := NewRecursiveSplitter(100, 200)
	if s.Overlap != 25 {
		t.Fatalf("expected overlap clamped to a quarter of chunk size, got %d", s.Overlap)
	}
}
