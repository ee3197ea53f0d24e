package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.CorpusService = (*CorpusService)(nil)

// CorpusService is a mock implementation of docqa.CorpusService.
type CorpusService struct {
	ProcessFn      func(ctx context.Context, name string) (*docqa.Corpus, error)
	QueryFn        func(ctx context.Context, name, question string) (*docqa.QueryResult, error)
	RetrieveFn     func(ctx context.Context, name, query string, k int) ([]docqa.SearchResult, error)
	ListCorporaFn  func(ctx context.Context) ([]*docqa.CorpusSummary, error)
	FindCorpusFn   func(ctx context.Context, name string) (*docqa.Corpus, error)
	DeleteCorpusFn func(ctx context.Context, name string) error
}

func (s *CorpusService) Process(ctx context.Context, name string) (*docqa.Corpus, error) {
	return s.ProcessFn(ctx, name)
}

func (s *CorpusService) Query(ctx context.Context, name, question string) (*docqa.QueryResult, error) {
	return s.QueryFn(ctx, name, question)
}

func (s *CorpusService) Retrieve(ctx context.Context, name, query string, k int) ([]docqa.SearchResult, error) {
	return s.RetrieveFn(ctx, name, query, k)
}

func (s *CorpusService) ListCorpora(ctx context.Context) ([]*docqa.CorpusSummary, error) {
	return s.ListCorporaFn(ctx)
}

func (s *CorpusService) FindCorpus(ctx context.Context, name string) (*docqa.Corpus, error) {
	return s.FindCorpusFn(ctx, name)
}

func (s *CorpusService) DeleteCorpus(ctx context.Context, name string) error {
	return s.DeleteCorpusFn(ctx, name)
}

var _ docqa.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is a mock implementation of docqa.CorpusStore.
type CorpusStore struct {
	FindCorpusByNameFn func(ctx context.Context, name string) (*docqa.Corpus, error)
	FindCorporaFn      func(ctx context.Context, filter docqa.CorpusFilter) ([]*docqa.Corpus, error)
	SaveCorpusFn       func(ctx context.Context, corpus *docqa.Corpus) error
	DeleteCorpusFn     func(ctx context.Context, name string) error
}

func (s *CorpusStore) FindCorpusByName(ctx context.Context, name string) (*docqa.Corpus, error) {
	return s.FindCorpusByNameFn(ctx, name)
}

func (s *CorpusStore) FindCorpora(ctx context.Context, filter docqa.CorpusFilter) ([]*docqa.Corpus, error) {
	return s.FindCorporaFn(ctx, filter)
}

func (s *CorpusStore) SaveCorpus(ctx context.Context, corpus *docqa.Corpus) error {
	return s.SaveCorpusFn(ctx, corpus)
}

func (s *CorpusStore) DeleteCorpus(ctx context.Context, name string) error {
	return s.DeleteCorpusFn(ctx, name)
}
