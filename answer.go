package docqa

import (
	"context"
	"strings"
)

// Markers delimiting the reasoning section of a model response.
const (
	ReasoningOpen  = "<think>"
	ReasoningClose = "</think>"
)

// FallbackReasoning is reported when a response carries no usable reasoning section.
const FallbackReasoning = "Analyzed the context and generated a response based on the provided documentation."

// Generator produces text from a prompt using a language model.
type Generator interface {
	// Generate returns the model response to prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model identifies the language model.
	Model() string
}

// Answer is a model response split into reasoning and final answer.
type Answer struct {
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
}

// Synthesizer answers a question from retrieved chunks.
type Synthesizer interface {
	// Synthesize builds a prompt from results, in order, and parses the model
	// response. Returns ESYNTHESIS if the model fails.
	Synthesize(ctx context.Context, question string, results []SearchResult) (*Answer, error)
}

// Source cites a page a query result was grounded on.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// QueryResult is the answer to one question. It is never persisted.
type QueryResult struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Reasoning  string   `json:"reasoning"`
	CorpusName string   `json:"corpusName"`
	Sources    []Source `json:"sources,omitempty"`
}

// ParseResponse splits a model response into reasoning and answer.
//
// When the response contains ReasoningOpen followed by ReasoningClose, the
// reasoning is the text between the first ReasoningOpen and the next
// ReasoningClose after it, and the answer is the text after that
// ReasoningClose. Otherwise the whole response is the answer and the reasoning
// is FallbackReasoning. A response with an unpaired marker is parsed the same
// way and additionally reported with an EUNPARSABLE error; the returned answer
// is usable in every case.
func ParseResponse(text string) (*Answer, error) {
	if start := strings.Index(text, ReasoningOpen); start >= 0 {
		body := start + len(ReasoningOpen)
		if i := strings.Index(text[body:], ReasoningClose); i >= 0 {
			end := body + i
			return &Answer{
				Reasoning: strings.TrimSpace(text[body:end]),
				Answer:    strings.TrimSpace(text[end+len(ReasoningClose):]),
			}, nil
		}
	}

	fallback := &Answer{
		Reasoning: FallbackReasoning,
		Answer:    strings.TrimSpace(text),
	}
	if !strings.Contains(text, ReasoningOpen) && !strings.Contains(text, ReasoningClose) {
		return fallback, nil
	}
	return fallback, Errorf(EUNPARSABLE, "mismatched reasoning markers in model response")
}

// Sources returns the distinct pages of results in retrieval order.
func Sources(results []SearchResult) []Source {
	seen := make(map[string]bool)
	var sources []Source
	for _, r := range results {
		if r.Chunk == nil || seen[r.Chunk.PageID] {
			continue
		}
		seen[r.Chunk.PageID] = true
		sources = append(sources, Source{Title: r.Chunk.Title, URL: r.Chunk.SourceURL})
	}
	return sources
}
