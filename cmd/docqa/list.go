package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	corpora, err := deps.Corpora.ListCorpora(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(corpora) == 0 {
		fmt.Fprintf(deps.Stdout, "No corpora found. Add a directory of pages under %s.\n", deps.DocsRoot)
		return nil
	}

	for _, c := range corpora {
		fmt.Fprintf(deps.Stdout, "%s  %d pages  %s\n", c.Name, c.PageCount, c.State)
	}
	return nil
}
