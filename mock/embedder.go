package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docqa.Embedder.
type Embedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	DimensionsFn func() int
	ModelFn      func() string
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) Dimensions() int {
	return e.DimensionsFn()
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}
