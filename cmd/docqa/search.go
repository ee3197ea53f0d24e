package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docqa"
)

// snippetWords is the number of words of each chunk shown by search.
const snippetWords = 30

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Corpora.Retrieve(deps.Ctx, c.Name, c.Query, c.K)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching chunks.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(deps.Stdout, "%d. %s  %s  (distance %.4f)\n", i+1, r.Chunk.Title, r.Chunk.SourceURL, r.Distance)
		fmt.Fprintf(deps.Stdout, "   %s\n", snippet(r.Chunk.Text))
	}
	return nil
}

func snippet(text string) string {
	words := strings.Fields(text)
	if len(words) <= snippetWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:snippetWords], " ") + " ..."
}
