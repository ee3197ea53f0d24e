package mock

import "github.com/fwojciec/docqa"

var _ docqa.Converter = (*Converter)(nil)

// Converter is a mock implementation of docqa.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
