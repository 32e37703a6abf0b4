// Package retrieval supplies similar-document context for classification.
// The classifier only depends on the Searcher contract; the backing store
// can be the local in-process index or a remote vector-search service.
package retrieval

import "context"

// Match is one retrieved training chunk.
type Match struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"` // In [0,1], descending across a result set.
}

// Searcher finds the most similar previously-seen chunks for a query text.
// Results are sorted by descending similarity and already filtered to the
// configured similarity floor.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Match, error)
}
