package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the delete command. The page directory is left in place.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docqa.Errorf(docqa.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Corpora.DeleteCorpus(deps.Ctx, c.Name); docqa.ErrorCode(err) == docqa.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: corpus %q not found. Use 'docqa list' to see available corpora.\n", c.Name)
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted corpus %q\n", c.Name)
	return nil
}
