package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/mock"
	dslog "github.com/fwojciec/docqa/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingCorpusService_Process(t *testing.T) {
	t.Parallel()

	t.Run("logs state and counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.CorpusService{
			ProcessFn: func(_ context.Context, name string) (*docqa.Corpus, error) {
				return &docqa.Corpus{Name: name, State: docqa.CorpusReady, PageCount: 2, ChunkCount: 6}, nil
			},
		}

		corpus, err := dslog.NewLoggingCorpusService(inner, logger).Process(context.Background(), "alpha")

		require.NoError(t, err)
		assert.Equal(t, "alpha", corpus.Name)
		output := buf.String()
		assert.Contains(t, output, "process corpus")
		assert.Contains(t, output, "corpus=alpha")
		assert.Contains(t, output, "state=ready")
		assert.Contains(t, output, "chunks=6")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error code on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.CorpusService{
			ProcessFn: func(context.Context, string) (*docqa.Corpus, error) {
				return nil, docqa.Errorf(docqa.ENODOCS, "no documents")
			},
		}

		_, err := dslog.NewLoggingCorpusService(inner, logger).Process(context.Background(), "alpha")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "code=no_documents")
	})
}

func TestLoggingCorpusService_Query(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.CorpusService{
		QueryFn: func(_ context.Context, name, question string) (*docqa.QueryResult, error) {
			return &docqa.QueryResult{
				Question:   question,
				CorpusName: name,
				Answer:     "answer",
				Sources:    []docqa.Source{{Title: "A", URL: "https://example.com/a"}},
			}, nil
		},
	}

	result, err := dslog.NewLoggingCorpusService(inner, logger).Query(context.Background(), "alpha", "what?")

	require.NoError(t, err)
	assert.Equal(t, "answer", result.Answer)
	output := buf.String()
	assert.Contains(t, output, "query corpus")
	assert.Contains(t, output, "question=what?")
	assert.Contains(t, output, "sources=1")
}

func TestLoggingCorpusService_DeleteCorpus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.CorpusService{
		DeleteCorpusFn: func(context.Context, string) error { return nil },
	}

	err := dslog.NewLoggingCorpusService(inner, logger).DeleteCorpus(context.Background(), "alpha")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "delete corpus")
}
