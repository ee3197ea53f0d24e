package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.PageLoader = (*PageLoader)(nil)

// PageLoader is a mock implementation of docqa.PageLoader.
type PageLoader struct {
	LoadPagesFn   func(ctx context.Context, dir string) (*docqa.PageSet, error)
	FingerprintFn func(ctx context.Context, dir string) (string, error)
	ScanCorporaFn func(ctx context.Context, root string) ([]*docqa.CorpusSummary, error)
}

func (l *PageLoader) LoadPages(ctx context.Context, dir string) (*docqa.PageSet, error) {
	return l.LoadPagesFn(ctx, dir)
}

func (l *PageLoader) Fingerprint(ctx context.Context, dir string) (string, error) {
	return l.FingerprintFn(ctx, dir)
}

func (l *PageLoader) ScanCorpora(ctx context.Context, root string) ([]*docqa.CorpusSummary, error) {
	return l.ScanCorporaFn(ctx, root)
}
