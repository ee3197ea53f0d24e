package docqa

import "context"

// MetricL2 is the squared Euclidean distance. It is the only metric used by
// indexes of this deployment; persisted indexes record it and loading an
// index built with another metric fails.
const MetricL2 = "l2"

// VectorIndex supports nearest neighbor search over embedded chunks of one
// corpus. Implementations are safe for concurrent searches but Add must not
// run concurrently with other calls for the same index.
type VectorIndex interface {
	// Dimensions returns the length of every vector in the index.
	Dimensions() int

	// Model identifies the embedding model that produced the vectors.
	Model() string

	// Metric identifies the distance metric.
	Metric() string

	// Len returns the number of chunks in the index.
	Len() int

	// Add appends chunks. Every chunk must carry an embedding of the index
	// dimension; otherwise nothing is added and EINVALID is returned.
	// Chunks are not deduplicated.
	Add(chunks []*Chunk) error

	// Search returns at most k chunks ordered by ascending distance to query.
	// Ties are broken by insertion order.
	Search(query []float32, k int) ([]SearchResult, error)

	// Chunks returns all chunks in insertion order.
	Chunks() []*Chunk
}

// IndexStore persists vector indexes, one location per corpus name.
type IndexStore interface {
	// Exists reports whether a persisted index exists for name.
	Exists(ctx context.Context, name string) (bool, error)

	// Save persists idx under name, replacing any previous index atomically.
	Save(ctx context.Context, name string, idx VectorIndex) error

	// Load reads the index persisted under name.
	// Returns ENOTFOUND if no index exists.
	Load(ctx context.Context, name string) (VectorIndex, error)

	// Delete removes the index persisted under name, if any.
	Delete(ctx context.Context, name string) error
}
