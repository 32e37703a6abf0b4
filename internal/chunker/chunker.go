// Package chunker splits long documents into bounded, overlapping segments
// while keeping readable context. Short documents pass through as a single
// chunk; long ones are split by a fixed word window or along detected
// section boundaries.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how a document is split.
type Strategy string

const (
	StrategyAuto     Strategy = "auto"
	StrategyFixed    Strategy = "fixed"
	StrategySemantic Strategy = "semantic"
)

// wordsPerPage drives page-range estimates.
const wordsPerPage = 250

// Config controls chunking behavior.
type Config struct {
	ChunkSize      int // Target chunk size in words.
	ChunkOverlap   int // Words repeated between consecutive chunks.
	MinChunk       int // Intended minimum words per chunk (advisory; only the final window may be shorter).
	ThresholdWords int // Documents at or below this word count stay whole.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:      1500,
		ChunkOverlap:   200,
		MinChunk:       100,
		ThresholdWords: 3000,
	}
}

// Chunker splits document text according to its Config.
type Chunker struct {
	cfg Config
}

// New returns a Chunker, filling in defaults for zero or invalid fields.
// Zero overlap is a valid setting and is kept as given.
func New(cfg Config) *Chunker {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		// Overlap must stay below the window or splitting cannot advance.
		cfg.ChunkOverlap = cfg.ChunkSize / 4
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = def.MinChunk
	}
	if cfg.ThresholdWords <= 0 {
		cfg.ThresholdWords = def.ThresholdWords
	}
	return &Chunker{cfg: cfg}
}

// ShouldChunk reports whether text is long enough to need splitting.
func (c *Chunker) ShouldChunk(text string) bool {
	return len(strings.Fields(text)) > c.cfg.ThresholdWords
}

// Chunk splits text using the given strategy. Chunks come back in document
// order with sequential IDs and TotalChunks set on every element.
func (c *Chunker) Chunk(text string, strategy Strategy) []Chunk {
	if !c.ShouldChunk(text) {
		words := len(strings.Fields(text))
		return finalize([]draft{{
			text:         text,
			pageStart:    1,
			pageEnd:      estimatePages(words),
			wordCount:    words,
			sectionTitle: "Full Document",
		}})
	}

	if strategy == StrategyAuto {
		if hasSections(text) {
			strategy = StrategySemantic
		} else {
			strategy = StrategyFixed
		}
	}

	if strategy == StrategySemantic {
		return finalize(c.semanticDrafts(text))
	}
	return finalize(c.fixedDrafts(strings.Fields(text)))
}

// fixedDrafts slides a ChunkSize window over the words, stepping back by
// ChunkOverlap on each advance. The final window may be shorter.
func (c *Chunker) fixedDrafts(words []string) []draft {
	totalWords := len(words)
	totalPages := estimatePages(totalWords)

	var drafts []draft
	start := 0
	for start < totalWords {
		end := start + c.cfg.ChunkSize
		if end > totalWords {
			end = totalWords
		}
		window := words[start:end]
		drafts = append(drafts, draft{
			text:         strings.Join(window, " "),
			pageStart:    pageAt(start, totalWords, totalPages),
			pageEnd:      pageAt(end, totalWords, totalPages),
			wordCount:    len(window),
			sectionTitle: fmt.Sprintf("Section %d", len(drafts)+1),
		})
		if end >= totalWords {
			break
		}
		start = end - c.cfg.ChunkOverlap
	}
	return drafts
}

// semanticDrafts splits along detected section boundaries. Sections of at
// most 1.5x ChunkSize words become single chunks; oversized sections are
// sub-chunked with a "(Part K)" title suffix. With no detectable sections
// it falls back to fixed-size splitting.
func (c *Chunker) semanticDrafts(text string) []draft {
	sections := detectSections(text)
	if len(sections) == 0 {
		return c.fixedDrafts(strings.Fields(text))
	}

	var drafts []draft
	for _, sec := range sections {
		words := strings.Fields(sec.body)
		if float64(len(words)) <= float64(c.cfg.ChunkSize)*1.5 {
			drafts = append(drafts, draft{
				text:         sec.body,
				pageStart:    1,
				pageEnd:      estimatePages(len(words)),
				wordCount:    len(words),
				sectionTitle: sec.title,
			})
			continue
		}
		sub := c.fixedDrafts(words)
		for i := range sub {
			sub[i].sectionTitle = fmt.Sprintf("%s (Part %d)", sec.title, i+1)
		}
		drafts = append(drafts, sub...)
	}
	return drafts
}

type section struct {
	title string
	body  string
}

var (
	mdHeadingRe      = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	colonHeadingRe   = regexp.MustCompile(`(?m)^([A-Z][^.!?\n]{0,100}):[ \n]`)
	chapterHeadingRe = regexp.MustCompile(`(?m)^((?:Chapter|Section|Part)\s+\d+[:\s]+[^\n]+)`)
	numberedLineRe   = regexp.MustCompile(`(?m)^\d+\.\s+[A-Z]`)
)

// hasSections reports whether the text carries any recognizable section
// marker. Deliberately broader than detectSections: a numbered-list marker
// is enough to try the semantic strategy, which still falls back to fixed
// splitting when no heading family yields two sections.
func hasSections(text string) bool {
	return mdHeadingRe.MatchString(text) ||
		colonHeadingRe.MatchString(text) ||
		numberedLineRe.MatchString(text) ||
		chapterHeadingRe.MatchString(text)
}

// detectSections tries each heading family in precedence order and returns
// sections for the first family with at least two matches.
func detectSections(text string) []section {
	families := []struct {
		re         *regexp.Regexp
		titleGroup int
	}{
		{mdHeadingRe, 2},
		{colonHeadingRe, 1},
		{chapterHeadingRe, 1},
	}

	for _, fam := range families {
		matches := fam.re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) < 2 {
			continue
		}
		var sections []section
		for i, m := range matches {
			title := strings.TrimSpace(text[m[2*fam.titleGroup]:m[2*fam.titleGroup+1]])
			bodyStart := m[1]
			bodyEnd := len(text)
			if i+1 < len(matches) {
				bodyEnd = matches[i+1][0]
			}
			body := strings.TrimSpace(text[bodyStart:bodyEnd])
			if body != "" {
				sections = append(sections, section{title: title, body: body})
			}
		}
		if len(sections) > 0 {
			return sections
		}
	}
	return nil
}

// estimatePages estimates a page count from a word count.
func estimatePages(words int) int {
	pages := words / wordsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// pageAt maps a word offset to an estimated page number.
func pageAt(wordIndex, totalWords, totalPages int) int {
	if totalWords == 0 {
		return 1
	}
	page := int(float64(wordIndex) / float64(totalWords) * float64(totalPages))
	if page < 1 {
		return 1
	}
	return page
}
