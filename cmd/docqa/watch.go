package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/fsnotify"
)

// Run executes the watch command. It processes the corpus once, then again
// after every burst of page changes, until interrupted.
func (c *WatchCmd) Run(deps *Dependencies) error {
	if err := docqa.ValidateCorpusName(c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	reprocess := func(ctx context.Context) {
		corpus, err := ProcessWithRetry(ctx, c.Name, deps.Corpora.Process, nil, deps.RetryDelays)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
			return
		}
		fmt.Fprintf(deps.Stdout, "Processed %q: %d pages, %d chunks\n", corpus.Name, corpus.PageCount, corpus.ChunkCount)
	}
	reprocess(deps.Ctx)

	w := &fsnotify.Watcher{Debounce: c.Debounce, Logger: deps.Logger}
	fmt.Fprintf(deps.Stdout, "Watching %s (Ctrl-C to stop)\n", filepath.Join(deps.DocsRoot, c.Name))
	if err := w.Watch(deps.Ctx, filepath.Join(deps.DocsRoot, c.Name), reprocess); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	return nil
}
