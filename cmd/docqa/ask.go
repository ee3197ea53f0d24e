package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the ask command. The corpus is processed first so the answer
// reflects the current pages.
func (c *AskCmd) Run(deps *Dependencies) error {
	if _, err := processCorpus(deps, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	result, err := deps.Corpora.Query(deps.Ctx, c.Name, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if c.Reasoning {
		fmt.Fprintf(deps.Stdout, "Reasoning:\n%s\n\n", result.Reasoning)
	}
	fmt.Fprintln(deps.Stdout, result.Answer)

	if len(result.Sources) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, s := range result.Sources {
			fmt.Fprintf(deps.Stdout, "  - %s (%s)\n", s.Title, s.URL)
		}
	}
	return nil
}
