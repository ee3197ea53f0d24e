package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelays is used for fast unit tests.
var noDelays = []time.Duration{0, 0}

func TestProcessWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		process := func(_ context.Context, name string) (*docqa.Corpus, error) {
			attempts++
			return &docqa.Corpus{Name: name, State: docqa.CorpusReady}, nil
		}

		corpus, err := main.ProcessWithRetry(context.Background(), "alpha", process, nil, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "alpha", corpus.Name)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries embedding failures and succeeds", func(t *testing.T) {
		t.Parallel()

		var attempts int
		var logged []string
		process := func(_ context.Context, name string) (*docqa.Corpus, error) {
			attempts++
			if attempts < 3 {
				return nil, docqa.Errorf(docqa.EEMBED, "quota exceeded")
			}
			return &docqa.Corpus{Name: name, State: docqa.CorpusReady}, nil
		}
		logf := func(format string, args ...any) {
			logged = append(logged, fmt.Sprintf(format, args...))
		}

		_, err := main.ProcessWithRetry(context.Background(), "alpha", process, logf, noDelays)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []string{
			"retry alpha (attempt 2): quota exceeded",
			"retry alpha (attempt 3): quota exceeded",
		}, logged)
	})

	t.Run("returns error after max retries", func(t *testing.T) {
		t.Parallel()

		var attempts int
		process := func(_ context.Context, _ string) (*docqa.Corpus, error) {
			attempts++
			return nil, docqa.Errorf(docqa.EEMBED, "quota exceeded")
		}

		_, err := main.ProcessWithRetry(context.Background(), "alpha", process, nil, noDelays)

		assert.Equal(t, docqa.EEMBED, docqa.ErrorCode(err))
		assert.Equal(t, 3, attempts) // 1 initial + 2 retries
	})

	t.Run("does not retry other failures", func(t *testing.T) {
		t.Parallel()

		var attempts int
		process := func(_ context.Context, _ string) (*docqa.Corpus, error) {
			attempts++
			return nil, docqa.Errorf(docqa.ENODIR, "missing")
		}

		_, err := main.ProcessWithRetry(context.Background(), "alpha", process, nil, noDelays)

		assert.Equal(t, docqa.ENODIR, docqa.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var attempts int
		process := func(_ context.Context, _ string) (*docqa.Corpus, error) {
			attempts++
			cancel()
			return nil, docqa.Errorf(docqa.EEMBED, "quota exceeded")
		}

		_, err := main.ProcessWithRetry(ctx, "alpha", process, nil, []time.Duration{time.Hour})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}
