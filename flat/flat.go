// Package flat provides an exhaustive nearest neighbor index over chunk
// embeddings using squared Euclidean distance.
package flat

import (
	"slices"
	"sync"

	"github.com/fwojciec/docqa"
)

// Ensure Index implements docqa.VectorIndex at compile time.
var _ docqa.VectorIndex = (*Index)(nil)

// Index is a brute-force vector index. Every search compares the query with
// every stored vector, so results are exact.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	model      string
	chunks     []*docqa.Chunk
}

// New creates an empty index for vectors of the given dimension produced by model.
func New(dimensions int, model string) (*Index, error) {
	if dimensions <= 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "index dimensions must be positive")
	}
	return &Index{dimensions: dimensions, model: model}, nil
}

// Dimensions returns the length of every vector in the index.
func (idx *Index) Dimensions() int { return idx.dimensions }

// Model identifies the embedding model that produced the vectors.
func (idx *Index) Model() string { return idx.model }

// Metric returns docqa.MetricL2.
func (idx *Index) Metric() string { return docqa.MetricL2 }

// Len returns the number of chunks in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Add appends chunks. All chunks are checked before any is added.
func (idx *Index) Add(chunks []*docqa.Chunk) error {
	for _, c := range chunks {
		if c == nil {
			return docqa.Errorf(docqa.EINVALID, "nil chunk")
		}
		if len(c.Embedding) != idx.dimensions {
			return docqa.Errorf(docqa.EINVALID, "chunk %q has %d dimensions, index expects %d", c.ID, len(c.Embedding), idx.dimensions)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunks = append(idx.chunks, chunks...)
	return nil
}

// Search returns at most k chunks ordered by ascending distance to query.
// Equal distances keep insertion order.
func (idx *Index) Search(query []float32, k int) ([]docqa.SearchResult, error) {
	if len(query) != idx.dimensions {
		return nil, docqa.Errorf(docqa.EINVALID, "query has %d dimensions, index expects %d", len(query), idx.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]docqa.SearchResult, len(idx.chunks))
	for i, c := range idx.chunks {
		results[i] = docqa.SearchResult{Chunk: c, Distance: SquaredL2(query, c.Embedding)}
	}

	slices.SortStableFunc(results, func(a, b docqa.SearchResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Chunks returns all chunks in insertion order.
func (idx *Index) Chunks() []*docqa.Chunk {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Clone(idx.chunks)
}

// SquaredL2 returns the squared Euclidean distance between a and b, which
// must have equal length.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
