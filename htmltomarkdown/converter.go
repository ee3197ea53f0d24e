// Package htmltomarkdown converts corpus pages saved as HTML into Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docqa"
)

var _ docqa.Converter = (*Converter)(nil)

// chromeTags hold site navigation rather than page content. Their text would
// otherwise end up in every chunk of every page of a scraped site.
var chromeTags = []string{"nav", "header", "footer", "aside", "form", "button"}

// Converter renders HTML pages as Markdown, dropping navigation chrome.
type Converter struct {
	conv *converter.Converter
}

func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	for _, tag := range chromeTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return &Converter{conv: conv}
}

// Convert returns the Markdown rendering of html.
// Returns EINVALID for blank input or input without any content.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docqa.Errorf(docqa.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", docqa.WrapError(err, docqa.EINVALID, "convert HTML: %s", err)
	}

	md = strings.TrimSpace(md)
	if md == "" {
		return "", docqa.Errorf(docqa.EINVALID, "HTML has no content")
	}
	return md, nil
}
