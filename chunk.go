package docqa

import (
	"iter"
	"strconv"
	"strings"
)

// Chunk represents a window of a page optimized for embedding and retrieval.
type Chunk struct {
	ID       string `json:"id"`
	PageID   string `json:"pageId"`   // Page.Path
	PageHash string `json:"pageHash"` // Page.Hash at chunking time

	// Denormalized for citation.
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"`

	// Position of the chunk within its page.
	Ordinal int `json:"ordinal"`

	// Offset of the first word of the chunk within the page content,
	// counted in words.
	StartOffset int `json:"startOffset"`

	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.PageID == "" {
		return Errorf(EINVALID, "chunk page ID required")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	if c.StartOffset < 0 {
		return Errorf(EINVALID, "chunk start offset must not be negative")
	}
	return nil
}

// ChunkOptions configures ChunkPage. Size and Overlap are counted in words.
type ChunkOptions struct {
	Size    int `json:"size" yaml:"size"`
	Overlap int `json:"overlap" yaml:"overlap"`
}

// Validate returns an error unless 0 <= Overlap < Size.
func (o ChunkOptions) Validate() error {
	if o.Size <= 0 {
		return Errorf(EINVALID, "chunk size must be positive")
	}
	if o.Overlap < 0 || o.Overlap >= o.Size {
		return Errorf(EINVALID, "chunk overlap must be in [0, %d)", o.Size)
	}
	return nil
}

// ChunkID returns the identifier of the chunk at ordinal within a page.
func ChunkID(pageID string, ordinal int) string {
	return pageID + "#" + strconv.Itoa(ordinal)
}

// ChunkPage lazily splits a page into windows of opts.Size words, each
// starting opts.Overlap words before the end of the previous one. The last
// window may be shorter. Chunk i starts at word i*(Size-Overlap).
//
// Invalid options or an empty page yield no chunks.
func ChunkPage(page *Page, opts ChunkOptions) iter.Seq[*Chunk] {
	return func(yield func(*Chunk) bool) {
		if page == nil || opts.Validate() != nil {
			return
		}

		words := strings.Fields(page.Content)
		step := opts.Size - opts.Overlap

		for i, start := 0, 0; start < len(words); i, start = i+1, start+step {
			end := min(start+opts.Size, len(words))

			chunk := &Chunk{
				ID:          ChunkID(page.Path, i),
				PageID:      page.Path,
				PageHash:    page.Hash,
				Title:       page.Title,
				SourceURL:   page.SourceURL,
				Ordinal:     i,
				StartOffset: start,
				Text:        strings.Join(words[start:end], " "),
			}
			if !yield(chunk) {
				return
			}

			// The window reached the end of the content.
			if end == len(words) {
				return
			}
		}
	}
}

// SearchResult represents a chunk matched by a vector search.
type SearchResult struct {
	Chunk *Chunk `json:"chunk"`

	// Distance to the query vector. Lower is closer.
	Distance float32 `json:"distance"`
}
