package chunker

// Chunk is a bounded contiguous segment of a longer document.
type Chunk struct {
	Text         string `json:"text"`
	ID           int    `json:"chunk_id"`      // 0-based position within the document.
	TotalChunks  int    `json:"total_chunks"`  // Same value on every chunk of one document.
	PageStart    int    `json:"page_start"`    // Estimated, 250 words/page.
	PageEnd      int    `json:"page_end"`
	WordCount    int    `json:"word_count"`
	CharCount    int    `json:"char_count"`
	SectionTitle string `json:"section_title"` // "Full Document", "Section N", or a detected heading.
}

// draft is a provisional chunk. TotalChunks is unknown until the whole
// sequence exists, so drafts are finalized in a second pass and only then
// handed to callers.
type draft struct {
	text         string
	pageStart    int
	pageEnd      int
	wordCount    int
	sectionTitle string
}

// finalize turns drafts into immutable chunks, assigning sequential IDs and
// backfilling TotalChunks.
func finalize(drafts []draft) []Chunk {
	chunks := make([]Chunk, len(drafts))
	for i, d := range drafts {
		chunks[i] = Chunk{
			Text:         d.text,
			ID:           i,
			TotalChunks:  len(drafts),
			PageStart:    d.pageStart,
			PageEnd:      d.pageEnd,
			WordCount:    d.wordCount,
			CharCount:    len(d.text),
			SectionTitle: d.sectionTitle,
		}
	}
	return chunks
}
