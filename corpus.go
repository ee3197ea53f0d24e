package docqa

import (
	"context"
	"strings"
	"time"
)

// CorpusState is the processing state of a corpus.
type CorpusState string

// CorpusState constants.
const (
	CorpusUnprocessed CorpusState = "unprocessed"
	CorpusProcessing  CorpusState = "processing"
	CorpusReady       CorpusState = "ready"
	CorpusFailed      CorpusState = "failed"
)

// Reasons recorded on failed corpora.
const (
	ReasonNoDocuments      = "NoDocuments"
	ReasonEmbeddingFailure = "EmbeddingFailure"
	ReasonInternal         = "Internal"
)

// Corpus represents a named, directory-backed collection of documentation
// pages and the state of its vector index.
type Corpus struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Directory string      `json:"directory"`
	State     CorpusState `json:"state"`

	// Reason the last processing failed. Empty unless State is CorpusFailed.
	Reason string `json:"reason,omitempty"`

	// Fingerprint of the directory at last successful processing.
	Fingerprint string `json:"fingerprint,omitempty"`

	PageCount      int    `json:"pageCount"`
	ChunkCount     int    `json:"chunkCount"`
	EmbeddingModel string `json:"embeddingModel,omitempty"`

	ProcessedAt time.Time `json:"processedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns an error if the corpus contains invalid fields.
func (c *Corpus) Validate() error {
	if err := ValidateCorpusName(c.Name); err != nil {
		return err
	}
	switch c.State {
	case CorpusUnprocessed, CorpusProcessing, CorpusReady, CorpusFailed:
	default:
		return Errorf(EINVALID, "invalid corpus state %q", c.State)
	}
	return nil
}

// ValidateCorpusName returns EINVALID unless name can name both a corpus
// directory and an index directory.
func ValidateCorpusName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return Errorf(EINVALID, "corpus name required")
	case name == "." || name == "..":
		return Errorf(EINVALID, "invalid corpus name %q", name)
	case strings.ContainsAny(name, `/\`):
		return Errorf(EINVALID, "corpus name %q must not contain path separators", name)
	case strings.HasSuffix(name, ".tmp"), strings.HasSuffix(name, ".old"):
		return Errorf(EINVALID, "corpus name %q must not end in .tmp or .old", name)
	}
	return nil
}

// CorpusSummary is a listing entry for a corpus.
type CorpusSummary struct {
	Name      string      `json:"name"`
	PageCount int         `json:"pageCount"`
	State     CorpusState `json:"state"`
}

// CorpusStore persists corpus records.
type CorpusStore interface {
	// FindCorpusByName retrieves a corpus by name.
	// Returns ENOTFOUND if corpus does not exist.
	FindCorpusByName(ctx context.Context, name string) (*Corpus, error)

	// FindCorpora retrieves corpora matching the filter, ordered by name.
	FindCorpora(ctx context.Context, filter CorpusFilter) ([]*Corpus, error)

	// SaveCorpus inserts the corpus or updates the record with the same name.
	// Assigns ID and timestamps.
	SaveCorpus(ctx context.Context, corpus *Corpus) error

	// DeleteCorpus permanently removes a corpus record.
	// Returns ENOTFOUND if corpus does not exist.
	DeleteCorpus(ctx context.Context, name string) error
}

// CorpusFilter represents a filter for FindCorpora.
type CorpusFilter struct {
	Name  *string      `json:"name"`
	State *CorpusState `json:"state"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CorpusService is the public entry point of the engine.
type CorpusService interface {
	// Process ingests the corpus directory into the corpus index.
	// Repeated calls with an unchanged directory are no-ops.
	// Returns ENODIR, ENODOCS or EEMBED on failure, leaving the corpus failed.
	Process(ctx context.Context, name string) (*Corpus, error)

	// Query answers a question from the corpus documentation.
	// Returns ENOTREADY unless the corpus is ready and ESYNTHESIS if the
	// language model fails.
	Query(ctx context.Context, name, question string) (*QueryResult, error)

	// Retrieve returns the k chunks closest to query.
	// Returns ENOTREADY unless the corpus is ready.
	Retrieve(ctx context.Context, name, query string, k int) ([]SearchResult, error)

	// ListCorpora lists corpus directories with their page counts.
	ListCorpora(ctx context.Context) ([]*CorpusSummary, error)

	// FindCorpus returns the corpus record.
	// Returns ENOTFOUND if the corpus was never registered.
	FindCorpus(ctx context.Context, name string) (*Corpus, error)

	// DeleteCorpus removes the corpus record and its persisted index.
	// The page directory is left untouched.
	DeleteCorpus(ctx context.Context, name string) error
}
