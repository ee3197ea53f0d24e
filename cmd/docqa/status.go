package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docqa"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	corpus, err := deps.Corpora.FindCorpus(deps.Ctx, c.Name)
	if docqa.ErrorCode(err) == docqa.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: corpus %q has not been processed. Use 'docqa process %s'.\n", c.Name, c.Name)
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Name:      %s\n", corpus.Name)
	fmt.Fprintf(deps.Stdout, "Directory: %s\n", corpus.Directory)
	fmt.Fprintf(deps.Stdout, "State:     %s\n", corpus.State)
	if corpus.Reason != "" {
		fmt.Fprintf(deps.Stdout, "Reason:    %s\n", corpus.Reason)
	}
	fmt.Fprintf(deps.Stdout, "Pages:     %d\n", corpus.PageCount)
	fmt.Fprintf(deps.Stdout, "Chunks:    %d\n", corpus.ChunkCount)
	if corpus.EmbeddingModel != "" {
		fmt.Fprintf(deps.Stdout, "Model:     %s\n", corpus.EmbeddingModel)
	}
	if !corpus.ProcessedAt.IsZero() {
		fmt.Fprintf(deps.Stdout, "Processed: %s\n", corpus.ProcessedAt.Format(time.RFC3339))
	}
	return nil
}
