package docqa

import "context"

// Page represents one documentation page loaded from a corpus directory.
type Page struct {
	// Path relative to the corpus directory. Identifies the page.
	Path string `json:"path"`

	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"`
	Content   string `json:"content"` // Markdown

	// Hash of Content, used to reuse embeddings of unchanged pages.
	Hash string `json:"hash"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.Path == "" {
		return Errorf(EINVALID, "page path required")
	}
	if p.Title == "" {
		return Errorf(EINVALID, "page title required")
	}
	if p.SourceURL == "" {
		return Errorf(EINVALID, "page source URL required")
	}
	return nil
}

// SkippedFile reports a page file that could not be loaded.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// PageSet is the result of loading a corpus directory.
type PageSet struct {
	// Pages ordered by relative path.
	Pages []*Page `json:"pages"`

	// Skipped lists malformed files. Loading continues past them.
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// PageLoader reads pages from corpus directories.
type PageLoader interface {
	// LoadPages returns the pages in dir ordered by relative path.
	// Returns an empty set and ENODIR if the directory does not exist.
	LoadPages(ctx context.Context, dir string) (*PageSet, error)

	// Fingerprint summarizes the page files in dir (names, sizes, modification
	// times). It changes whenever a page file is added, removed or modified.
	// Returns ENODIR if the directory does not exist.
	Fingerprint(ctx context.Context, dir string) (string, error)

	// ScanCorpora lists the corpus directories found directly under root.
	ScanCorpora(ctx context.Context, root string) ([]*CorpusSummary, error)
}
