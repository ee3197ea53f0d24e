// Package fs reads documentation pages from corpus directories and provides
// atomic directory replacement for on-disk indexes.
package fs

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docqa"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// frontMatter is the metadata block at the top of a page file.
type frontMatter struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// FormatPage formats a page with YAML front matter.
func FormatPage(page *docqa.Page) string {
	meta, _ := yaml.Marshal(frontMatter{Title: page.Title, URL: page.SourceURL})

	var b strings.Builder
	b.WriteString(frontMatterDelimiter + "\n")
	b.Write(meta)
	b.WriteString(frontMatterDelimiter + "\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// ParsePage parses a page file. The file must begin with a front matter
// block delimited by "---" lines carrying title and url. Trailing
// whitespace on the delimiter lines is ignored.
func ParsePage(path string, data []byte) (*docqa.Page, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return nil, docqa.Errorf(docqa.EINVALID, "missing front matter")
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
			closing = i
			break
		}
	}
	if closing < 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "unterminated front matter")
	}

	meta, err := parseFrontMatter(strings.Join(lines[1:closing], "\n"))
	if err != nil {
		return nil, err
	}

	page := &docqa.Page{
		Path:      path,
		Title:     meta.Title,
		SourceURL: meta.URL,
		Content:   strings.TrimSpace(strings.Join(lines[closing+1:], "\n")),
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// parseFrontMatter decodes the metadata block as YAML. Unquoted values that
// are not valid YAML, such as titles containing ": ", are read line by line.
func parseFrontMatter(block string) (frontMatter, error) {
	var meta frontMatter
	if err := yaml.NewDecoder(bytes.NewBufferString(block)).Decode(&meta); err == nil {
		return meta, nil
	}

	meta = frontMatter{}
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "title":
			meta.Title = strings.TrimSpace(value)
		case "url":
			meta.URL = strings.TrimSpace(value)
		}
	}
	if meta.Title == "" && meta.URL == "" {
		return meta, docqa.Errorf(docqa.EINVALID, "malformed front matter")
	}
	return meta, nil
}
