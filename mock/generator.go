package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.Generator = (*Generator)(nil)

// Generator is a mock implementation of docqa.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
	ModelFn    func() string
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}

func (g *Generator) Model() string {
	return g.ModelFn()
}

var _ docqa.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a mock implementation of docqa.Synthesizer.
type Synthesizer struct {
	SynthesizeFn func(ctx context.Context, question string, results []docqa.SearchResult) (*docqa.Answer, error)
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []docqa.SearchResult) (*docqa.Answer, error) {
	return s.SynthesizeFn(ctx, question, results)
}
