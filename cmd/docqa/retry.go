package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/docqa"
)

// ProcessFunc is the signature of docqa.CorpusService.Process.
type ProcessFunc func(ctx context.Context, name string) (*docqa.Corpus, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for processing retries: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// ProcessWithRetry processes a corpus, retrying after each delay while the
// embedding provider fails. Other errors are returned immediately since
// repeating them cannot succeed.
func ProcessWithRetry(ctx context.Context, name string, process ProcessFunc, logger LogFunc, delays []time.Duration) (*docqa.Corpus, error) {
	for attempt := 0; ; attempt++ {
		corpus, err := process(ctx, name)
		if err == nil {
			return corpus, nil
		}
		if docqa.ErrorCode(err) != docqa.EEMBED || attempt >= len(delays) {
			return nil, err
		}

		if logger != nil {
			logger("retry %s (attempt %d): %s", name, attempt+2, docqa.ErrorMessage(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}

// processCorpus processes name, reporting retries on stderr.
func processCorpus(deps *Dependencies, name string) (*docqa.Corpus, error) {
	logf := func(format string, args ...any) {
		fmt.Fprintf(deps.Stderr, format+"\n", args...)
	}
	return ProcessWithRetry(deps.Ctx, name, deps.Corpora.Process, logf, deps.RetryDelays)
}
