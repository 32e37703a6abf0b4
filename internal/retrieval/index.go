package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ouslabs/docclass/internal/chunker"
	"github.com/ouslabs/docclass/internal/document"
)

// embeddingDim is the hashed bag-of-words vector size. Small on purpose:
// the index holds short training chunks, not a web corpus.
const embeddingDim = 256

// Index is an in-memory vector index over labeled training chunks with
// optional JSON persistence. All methods are safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	path      string // Persistence file; empty disables Save/Load.
	chunker   *chunker.Chunker
	threshold float64
	chunks    []indexedChunk
	byHash    map[string]string // content hash -> doc ID
}

type indexedChunk struct {
	DocID    string    `json:"doc_id"`
	Text     string    `json:"text"`
	Label    string    `json:"label"`
	Filename string    `json:"filename,omitempty"`
	Vector   []float32 `json:"vector"`
}

type indexFile struct {
	Dimension int               `json:"dimension"`
	Chunks    []indexedChunk    `json:"chunks"`
	ByHash    map[string]string `json:"by_hash"`
}

// IndexStats summarizes index contents.
type IndexStats struct {
	TotalChunks int            `json:"total_chunks"`
	Labels      map[string]int `json:"label_distribution"`
}

// NewIndex creates an empty index. threshold is the similarity floor
// applied to search results.
func NewIndex(path string, ck *chunker.Chunker, threshold float64) *Index {
	return &Index{
		path:      path,
		chunker:   ck,
		threshold: threshold,
		byHash:    make(map[string]string),
	}
}

// Load reads a previously saved index. A missing file is not an error: the
// index simply starts empty.
func (ix *Index) Load() error {
	if ix.path == "" {
		return nil
	}
	data, err := os.ReadFile(ix.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read index: %w", err)
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	if f.Dimension != 0 && f.Dimension != embeddingDim {
		return fmt.Errorf("index dimension %d does not match %d", f.Dimension, embeddingDim)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = f.Chunks
	ix.byHash = f.ByHash
	if ix.byHash == nil {
		ix.byHash = make(map[string]string)
	}
	return nil
}

// Save writes the index to its persistence path.
func (ix *Index) Save() error {
	if ix.path == "" {
		return nil
	}

	ix.mu.RLock()
	f := indexFile{
		Dimension: embeddingDim,
		Chunks:    ix.chunks,
		ByHash:    ix.byHash,
	}
	data, err := json.Marshal(f)
	ix.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	tmp := ix.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, ix.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// HasContent reports whether a document with this content hash was already
// indexed, and its doc ID if so.
func (ix *Index) HasContent(hash string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.byHash[hash]
	return id, ok
}

// AddDocument chunks a labeled document, embeds each chunk and stores it.
// Returns the number of chunks added.
func (ix *Index) AddDocument(doc document.Document, docID, contentHash string) (int, error) {
	if doc.Label == "" {
		return 0, fmt.Errorf("training document %q has no label", doc.Filename)
	}
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return 0, fmt.Errorf("training document %q has no text", doc.Filename)
	}

	chunks := ix.chunker.Chunk(text, chunker.StrategyAuto)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, ch := range chunks {
		ix.chunks = append(ix.chunks, indexedChunk{
			DocID:    docID,
			Text:     ch.Text,
			Label:    doc.Label,
			Filename: doc.Filename,
			Vector:   embed(ch.Text),
		})
	}
	if contentHash != "" {
		ix.byHash[contentHash] = docID
	}
	return len(chunks), nil
}

// Search implements Searcher over the local index.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qv := embed(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matches []Match
	for _, ch := range ix.chunks {
		sim := cosine(qv, ch.Vector)
		if sim >= ix.threshold {
			matches = append(matches, Match{
				Text:       ch.Text,
				Label:      ch.Label,
				Similarity: sim,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Stats returns chunk count and label distribution.
func (ix *Index) Stats() IndexStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	stats := IndexStats{
		TotalChunks: len(ix.chunks),
		Labels:      make(map[string]int),
	}
	for _, ch := range ix.chunks {
		stats.Labels[ch.Label]++
	}
	return stats
}

// Reset drops all indexed chunks and hashes.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = nil
	ix.byHash = make(map[string]string)
}

// embed maps text to an L2-normalized hashed bag-of-words vector.
func embed(text string) []float32 {
	vec := make([]float32, embeddingDim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]{}")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%embeddingDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// cosine of two normalized vectors is their dot product, clamped to [0,1].
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}
