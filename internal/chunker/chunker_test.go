package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestShouldChunk(t *testing.T) {
	c := New(DefaultConfig())

	if c.ShouldChunk("This is a short document with only ten words total.") {
		t.Error("short text should not need chunking")
	}
	if !c.ShouldChunk(words(3001)) {
		t.Error("3001 words should need chunking")
	}
	if c.ShouldChunk(words(3000)) {
		t.Error("threshold is strict: exactly 3000 words stays whole")
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New(DefaultConfig())
	text := "A short memo about nothing in particular."
	chunks := c.Chunk(text, StrategyAuto)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	got := chunks[0]
	if got.ID != 0 || got.TotalChunks != 1 {
		t.Errorf("expected id=0 total=1, got id=%d total=%d", got.ID, got.TotalChunks)
	}
	if got.SectionTitle != "Full Document" {
		t.Errorf("expected section title %q, got %q", "Full Document", got.SectionTitle)
	}
	if got.Text != text {
		t.Errorf("single chunk must span the whole text")
	}
	if got.WordCount != 7 || got.CharCount != len(text) {
		t.Errorf("counts mismatch: words=%d chars=%d", got.WordCount, got.CharCount)
	}
}

func TestChunk_EmptyText(t *testing.T) {
	c := New(DefaultConfig())
	chunks := c.Chunk("", StrategyAuto)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 trivial chunk, got %d", len(chunks))
	}
	if chunks[0].WordCount != 0 || chunks[0].CharCount != 0 {
		t.Errorf("trivial chunk should have zero counts, got %+v", chunks[0])
	}
}

func TestChunk_Fixed5000Words(t *testing.T) {
	c := New(Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 100, ThresholdWords: 3000})
	chunks := c.Chunk(words(5000), StrategyFixed)

	// Windows start at 0, 1300, 2600, 3900.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.ID != i {
			t.Errorf("chunk %d: id=%d", i, ch.ID)
		}
		if ch.TotalChunks != 4 {
			t.Errorf("chunk %d: total_chunks=%d, want 4", i, ch.TotalChunks)
		}
		if i < 3 && ch.WordCount != 1500 {
			t.Errorf("chunk %d: word_count=%d, want 1500", i, ch.WordCount)
		}
	}
	if last := chunks[3]; last.WordCount != 1100 {
		t.Errorf("final chunk word_count=%d, want 1100", last.WordCount)
	}
}

func TestChunk_FixedOverlapReconstruction(t *testing.T) {
	size, overlap := 1500, 200
	c := New(Config{ChunkSize: size, ChunkOverlap: overlap, MinChunk: 100, ThresholdWords: 3000})
	chunks := c.Chunk(words(5000), StrategyFixed)

	for i := 0; i+1 < len(chunks); i++ {
		cur := strings.Fields(chunks[i].Text)
		next := strings.Fields(chunks[i+1].Text)

		// The next chunk repeats the last `overlap` words of the current one.
		tail := cur[len(cur)-overlap:]
		head := next[:overlap]
		for j := range tail {
			if tail[j] != head[j] {
				t.Fatalf("chunk %d->%d: overlap word %d is %q, want %q", i, i+1, j, head[j], tail[j])
			}
		}
	}

	// Concatenating non-overlapping regions reconstructs the original text.
	var rebuilt []string
	for i, ch := range chunks {
		ws := strings.Fields(ch.Text)
		if i > 0 {
			ws = ws[overlap:]
		}
		rebuilt = append(rebuilt, ws...)
	}
	if joined := strings.Join(rebuilt, " "); joined != words(5000) {
		t.Error("reconstructed text does not match original")
	}
}

func TestChunk_PageRanges(t *testing.T) {
	c := New(Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 100, ThresholdWords: 3000})
	chunks := c.Chunk(words(5000), StrategyFixed)

	// 5000 words -> 20 estimated pages.
	if chunks[0].PageStart != 1 {
		t.Errorf("first chunk starts at page %d, want 1", chunks[0].PageStart)
	}
	if chunks[len(chunks)-1].PageEnd != 20 {
		t.Errorf("last chunk ends at page %d, want 20", chunks[len(chunks)-1].PageEnd)
	}
	for i, ch := range chunks {
		if ch.PageStart > ch.PageEnd {
			t.Errorf("chunk %d: page range inverted (%d, %d)", i, ch.PageStart, ch.PageEnd)
		}
	}
}

func TestChunk_AutoSelectsSemanticForChapters(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&sb, "Chapter %d %s\n%s\n", i, []string{"Introduction", "Methodology", "Results"}[i-1], words(1400))
	}
	text := sb.String()

	c := New(DefaultConfig())
	chunks := c.Chunk(text, StrategyAuto)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 section chunks, got %d", len(chunks))
	}
	wantTitles := []string{"Chapter 1 Introduction", "Chapter 2 Methodology", "Chapter 3 Results"}
	for i, ch := range chunks {
		if ch.SectionTitle != wantTitles[i] {
			t.Errorf("chunk %d: section title %q, want %q", i, ch.SectionTitle, wantTitles[i])
		}
		if ch.TotalChunks != 3 {
			t.Errorf("chunk %d: total_chunks=%d, want 3", i, ch.TotalChunks)
		}
	}
}

func TestChunk_SemanticMarkdownHeadings(t *testing.T) {
	text := "# Overview\n" + words(1600) + "\n# Details\n" + words(1600)

	c := New(DefaultConfig())
	chunks := c.Chunk(text, StrategySemantic)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].SectionTitle != "Overview" || chunks[1].SectionTitle != "Details" {
		t.Errorf("unexpected titles: %q, %q", chunks[0].SectionTitle, chunks[1].SectionTitle)
	}
}

func TestChunk_SemanticOversizedSectionSplitsIntoParts(t *testing.T) {
	// Second section exceeds 1.5x ChunkSize and must be sub-chunked.
	text := "# Small\n" + words(500) + "\n# Huge\n" + words(2500)

	c := New(Config{ChunkSize: 1000, ChunkOverlap: 100, MinChunk: 50, ThresholdWords: 2000})
	chunks := c.Chunk(text, StrategySemantic)

	if len(chunks) < 3 {
		t.Fatalf("expected small chunk plus parts, got %d chunks", len(chunks))
	}
	if chunks[0].SectionTitle != "Small" {
		t.Errorf("first title %q, want Small", chunks[0].SectionTitle)
	}
	for i, ch := range chunks[1:] {
		want := fmt.Sprintf("Huge (Part %d)", i+1)
		if ch.SectionTitle != want {
			t.Errorf("part %d title %q, want %q", i+1, ch.SectionTitle, want)
		}
	}
	for i, ch := range chunks {
		if ch.ID != i {
			t.Errorf("chunk %d has id %d", i, ch.ID)
		}
		if ch.TotalChunks != len(chunks) {
			t.Errorf("chunk %d: total_chunks=%d, want %d", i, ch.TotalChunks, len(chunks))
		}
	}
}

func TestChunk_SemanticFallsBackWithoutSections(t *testing.T) {
	c := New(Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 100, ThresholdWords: 3000})
	chunks := c.Chunk(words(5000), StrategySemantic)

	if len(chunks) != 4 {
		t.Fatalf("expected fixed-style 4 chunks on fallback, got %d", len(chunks))
	}
	if chunks[0].SectionTitle != "Section 1" {
		t.Errorf("fallback should use fixed section titles, got %q", chunks[0].SectionTitle)
	}
}

func TestChunk_TotalChunksConsistent(t *testing.T) {
	c := New(DefaultConfig())
	for _, strat := range []Strategy{StrategyFixed, StrategySemantic, StrategyAuto} {
		chunks := c.Chunk(words(8000), strat)
		for i, ch := range chunks {
			if ch.TotalChunks != len(chunks) {
				t.Errorf("%s: chunk %d total_chunks=%d, want %d", strat, i, ch.TotalChunks, len(chunks))
			}
			if ch.WordCount != len(strings.Fields(ch.Text)) || ch.CharCount != len(ch.Text) {
				t.Errorf("%s: chunk %d derived counts do not match text", strat, i)
			}
		}
	}
}

func TestNew_ZeroOverlapKept(t *testing.T) {
	c := New(Config{ChunkSize: 1000, ChunkOverlap: 0, MinChunk: 50, ThresholdWords: 2000})
	chunks := c.Chunk(words(3000), StrategyFixed)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 disjoint chunks, got %d", len(chunks))
	}
	if got := strings.Fields(chunks[1].Text)[0]; got != "w1000" {
		t.Errorf("second chunk starts at %q, want w1000 (overlap must stay zero)", got)
	}
	if got := strings.Fields(chunks[2].Text)[0]; got != "w2000" {
		t.Errorf("third chunk starts at %q, want w2000", got)
	}
}

func TestNew_ClampsInvalidOverlap(t *testing.T) {
	c := New(Config{ChunkSize: 100, ChunkOverlap: 150})
	chunks := c.Chunk(words(5000), StrategyFixed)
	// Must terminate and cover the document.
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last.Text, "w4999") {
		t.Error("chunking did not reach end of document")
	}
}
