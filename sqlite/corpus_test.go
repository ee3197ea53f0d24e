package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusStore_SaveCorpus(t *testing.T) {
	t.Parallel()

	t.Run("inserts corpus with generated ID and timestamps", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		corpus := &docqa.Corpus{Name: "alpha", Directory: "/docs/alpha", State: docqa.CorpusUnprocessed}

		err := store.SaveCorpus(context.Background(), corpus)

		require.NoError(t, err)
		assert.NotEmpty(t, corpus.ID)
		assert.False(t, corpus.CreatedAt.IsZero())
		assert.False(t, corpus.UpdatedAt.IsZero())
	})

	t.Run("updates existing record with the same name", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()
		first := &docqa.Corpus{Name: "alpha", State: docqa.CorpusProcessing}
		require.NoError(t, store.SaveCorpus(ctx, first))

		processedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		second := &docqa.Corpus{
			Name:           "alpha",
			State:          docqa.CorpusReady,
			Fingerprint:    "abc",
			PageCount:      2,
			ChunkCount:     6,
			EmbeddingModel: "test-model",
			ProcessedAt:    processedAt,
		}
		require.NoError(t, store.SaveCorpus(ctx, second))

		assert.Equal(t, first.ID, second.ID)
		found, err := store.FindCorpusByName(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, docqa.CorpusReady, found.State)
		assert.Equal(t, "abc", found.Fingerprint)
		assert.Equal(t, 2, found.PageCount)
		assert.Equal(t, 6, found.ChunkCount)
		assert.Equal(t, "test-model", found.EmbeddingModel)
		assert.True(t, processedAt.Equal(found.ProcessedAt))

		all, err := store.FindCorpora(ctx, docqa.CorpusFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("returns error for invalid corpus", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))

		err := store.SaveCorpus(context.Background(), &docqa.Corpus{Name: "a/b", State: docqa.CorpusReady})

		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})
}

func TestCorpusStore_FindCorpusByName(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for unknown corpus", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))

		_, err := store.FindCorpusByName(context.Background(), "missing")

		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	})

	t.Run("keeps failure reason", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.SaveCorpus(ctx, &docqa.Corpus{
			Name:   "alpha",
			State:  docqa.CorpusFailed,
			Reason: docqa.ReasonNoDocuments,
		}))

		found, err := store.FindCorpusByName(ctx, "alpha")

		require.NoError(t, err)
		assert.Equal(t, docqa.CorpusFailed, found.State)
		assert.Equal(t, docqa.ReasonNoDocuments, found.Reason)
		assert.True(t, found.ProcessedAt.IsZero())
	})
}

func TestCorpusStore_FindCorpora(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) *sqlite.CorpusStore {
		t.Helper()
		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.SaveCorpus(ctx, &docqa.Corpus{Name: "gamma", State: docqa.CorpusReady}))
		require.NoError(t, store.SaveCorpus(ctx, &docqa.Corpus{Name: "alpha", State: docqa.CorpusReady}))
		require.NoError(t, store.SaveCorpus(ctx, &docqa.Corpus{Name: "beta", State: docqa.CorpusFailed}))
		return store
	}

	names := func(corpora []*docqa.Corpus) []string {
		out := make([]string, len(corpora))
		for i, c := range corpora {
			out[i] = c.Name
		}
		return out
	}

	t.Run("returns all corpora ordered by name", func(t *testing.T) {
		t.Parallel()

		corpora, err := setup(t).FindCorpora(context.Background(), docqa.CorpusFilter{})

		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, names(corpora))
	})

	t.Run("filters by state", func(t *testing.T) {
		t.Parallel()

		state := docqa.CorpusReady
		corpora, err := setup(t).FindCorpora(context.Background(), docqa.CorpusFilter{State: &state})

		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "gamma"}, names(corpora))
	})

	t.Run("filters by name", func(t *testing.T) {
		t.Parallel()

		name := "beta"
		corpora, err := setup(t).FindCorpora(context.Background(), docqa.CorpusFilter{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, []string{"beta"}, names(corpora))
	})

	t.Run("applies offset and limit", func(t *testing.T) {
		t.Parallel()

		corpora, err := setup(t).FindCorpora(context.Background(), docqa.CorpusFilter{Offset: 1, Limit: 1})

		require.NoError(t, err)
		assert.Equal(t, []string{"beta"}, names(corpora))
	})

	t.Run("applies offset without limit", func(t *testing.T) {
		t.Parallel()

		corpora, err := setup(t).FindCorpora(context.Background(), docqa.CorpusFilter{Offset: 2})

		require.NoError(t, err)
		assert.Equal(t, []string{"gamma"}, names(corpora))
	})
}

func TestCorpusStore_DeleteCorpus(t *testing.T) {
	t.Parallel()

	t.Run("removes corpus", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.SaveCorpus(ctx, &docqa.Corpus{Name: "alpha", State: docqa.CorpusReady}))

		require.NoError(t, store.DeleteCorpus(ctx, "alpha"))

		_, err := store.FindCorpusByName(ctx, "alpha")
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for unknown corpus", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCorpusStore(setupTestDB(t))

		err := store.DeleteCorpus(context.Background(), "missing")

		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	})
}
