package gemini

import (
	"context"
	"math"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
)

// Ensure Embedder implements docqa.Embedder at compile time.
var _ docqa.Embedder = (*Embedder)(nil)

// Embedder implements docqa.Embedder using the Gemini embedding API.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewEmbedder creates a new Embedder returning vectors of the given length.
func NewEmbedder(client *genai.Client, model string, dimensions int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimensions: dimensions}
}

// Dimensions returns the vector length.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Model returns the embedding model identifier.
func (e *Embedder) Model() string { return e.model }

// Embed returns the unit-length embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "text to embed required")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, "user")},
		BuildEmbedConfig(e.dimensions),
	)
	if err != nil {
		return nil, docqa.WrapError(err, docqa.EEMBED, "gemini embedding failed")
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, docqa.Errorf(docqa.EEMBED, "gemini returned no embedding")
	}

	values := result.Embeddings[0].Values
	if len(values) != e.dimensions {
		return nil, docqa.Errorf(docqa.EEMBED, "gemini returned %d dimensions, want %d", len(values), e.dimensions)
	}
	return Normalize(values), nil
}

// BuildEmbedConfig returns the EmbedContentConfig for Gemini embedding calls.
func BuildEmbedConfig(dimensions int) *genai.EmbedContentConfig {
	config := &genai.EmbedContentConfig{TaskType: "RETRIEVAL_DOCUMENT"}
	if dimensions > 0 {
		d := int32(dimensions)
		config.OutputDimensionality = &d
	}
	return config
}

// Normalize scales v to unit length in place and returns it. Truncated
// Gemini embeddings are not normalized by the API.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= scale
	}
	return v
}
