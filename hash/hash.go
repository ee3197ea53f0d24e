// Package hash provides an offline embedder based on feature hashing.
//
// Every lowercased word of the text is hashed into one of a fixed number of
// buckets with a hash-derived sign, and the resulting vector is normalized to
// unit length. Texts sharing words are close, which is enough for local use
// and tests without a network connection.
package hash

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docqa"
)

// DefaultDimensions is the vector length used when none is given.
const DefaultDimensions = 256

// Ensure Embedder implements docqa.Embedder at compile time.
var _ docqa.Embedder = (*Embedder)(nil)

// Embedder implements docqa.Embedder by feature hashing.
type Embedder struct {
	dimensions int
}

// NewEmbedder creates a new Embedder producing vectors of the given length.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Dimensions returns the vector length.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Model identifies the embedder and its dimension.
func (e *Embedder) Model() string { return "hash-" + strconv.Itoa(e.dimensions) }

// Embed returns the normalized feature vector of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, docqa.WrapError(err, docqa.EEMBED, "embedding cancelled")
	}

	v := make([]float32, e.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := xxhash.Sum64String(w)
		bucket := h % uint64(e.dimensions)
		if h>>63 == 1 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v, nil
}
