package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
	docqahttp "github.com/fwojciec/docqa/http"
)

// Run executes the serve command. It blocks until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	addr := c.Addr
	if addr == "" {
		addr = deps.Addr
	}

	srv := docqahttp.NewServer(deps.Corpora, docqahttp.WithLogger(deps.Logger))
	fmt.Fprintf(deps.Stdout, "Serving on http://%s\n", addr)
	if err := srv.ListenAndServe(deps.Ctx, addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	return nil
}
