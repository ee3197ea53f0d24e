package docqa

import "context"

// Embedder maps text to a vector of fixed dimension.
//
// Embed must be deterministic for identical input within one instance.
// Indexes record the model that produced their vectors; querying an index
// with a different model is a configuration error.
type Embedder interface {
	// Embed returns the embedding of text.
	// Failures are reported with code EEMBED.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the length of every vector returned by Embed.
	Dimensions() int

	// Model identifies the embedding model.
	Model() string
}
