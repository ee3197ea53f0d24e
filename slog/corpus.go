// Package slog provides logging decorators for docqa services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

// Ensure LoggingCorpusService implements docqa.CorpusService.
var _ docqa.CorpusService = (*LoggingCorpusService)(nil)

// LoggingCorpusService wraps a CorpusService with logging.
type LoggingCorpusService struct {
	next   docqa.CorpusService
	logger *slog.Logger
}

// NewLoggingCorpusService creates a new LoggingCorpusService.
func NewLoggingCorpusService(next docqa.CorpusService, logger *slog.Logger) *LoggingCorpusService {
	return &LoggingCorpusService{next: next, logger: logger}
}

// Process delegates to the wrapped service and logs the outcome.
func (s *LoggingCorpusService) Process(ctx context.Context, name string) (corpus *docqa.Corpus, err error) {
	defer func(begin time.Time) {
		attrs := []any{"corpus", name, "duration", time.Since(begin)}
		if corpus != nil {
			attrs = append(attrs, "state", corpus.State, "pages", corpus.PageCount, "chunks", corpus.ChunkCount)
		}
		if err != nil {
			attrs = append(attrs, "code", docqa.ErrorCode(err), "err", err)
		}
		s.logger.Info("process corpus", attrs...)
	}(time.Now())
	return s.next.Process(ctx, name)
}

// Query delegates to the wrapped service and logs the outcome.
func (s *LoggingCorpusService) Query(ctx context.Context, name, question string) (result *docqa.QueryResult, err error) {
	defer func(begin time.Time) {
		sources := 0
		if result != nil {
			sources = len(result.Sources)
		}
		s.logger.Info("query corpus",
			"corpus", name,
			"question", question,
			"sources", sources,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Query(ctx, name, question)
}

// Retrieve delegates to the wrapped service and logs the outcome.
func (s *LoggingCorpusService) Retrieve(ctx context.Context, name, query string, k int) (results []docqa.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("retrieve chunks",
			"corpus", name,
			"k", k,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Retrieve(ctx, name, query, k)
}

// ListCorpora delegates to the wrapped service.
func (s *LoggingCorpusService) ListCorpora(ctx context.Context) (summaries []*docqa.CorpusSummary, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("list corpora", "count", len(summaries), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.ListCorpora(ctx)
}

// FindCorpus delegates to the wrapped service.
func (s *LoggingCorpusService) FindCorpus(ctx context.Context, name string) (*docqa.Corpus, error) {
	return s.next.FindCorpus(ctx, name)
}

// DeleteCorpus delegates to the wrapped service and logs the outcome.
func (s *LoggingCorpusService) DeleteCorpus(ctx context.Context, name string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete corpus", "corpus", name, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.DeleteCorpus(ctx, name)
}
