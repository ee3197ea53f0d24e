package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of docqa.IndexStore.
type IndexStore struct {
	ExistsFn func(ctx context.Context, name string) (bool, error)
	SaveFn   func(ctx context.Context, name string, idx docqa.VectorIndex) error
	LoadFn   func(ctx context.Context, name string) (docqa.VectorIndex, error)
	DeleteFn func(ctx context.Context, name string) error
}

func (s *IndexStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.ExistsFn(ctx, name)
}

func (s *IndexStore) Save(ctx context.Context, name string, idx docqa.VectorIndex) error {
	return s.SaveFn(ctx, name, idx)
}

func (s *IndexStore) Load(ctx context.Context, name string) (docqa.VectorIndex, error) {
	return s.LoadFn(ctx, name)
}

func (s *IndexStore) Delete(ctx context.Context, name string) error {
	return s.DeleteFn(ctx, name)
}
