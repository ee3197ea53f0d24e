package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the process command.
func (c *ProcessCmd) Run(deps *Dependencies) error {
	corpus, err := processCorpus(deps, c.Name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Processed %q: %d pages, %d chunks (%s)\n",
		corpus.Name, corpus.PageCount, corpus.ChunkCount, corpus.EmbeddingModel)
	return nil
}
