//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newClient(t *testing.T, ctx context.Context) *genai.Client {
	t.Helper()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)
	return client
}

func TestEmbedder_Integration_ReturnsVector(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e := gemini.NewEmbedder(newClient(t, ctx), gemini.DefaultEmbeddingModel, 768)

	v, err := e.Embed(ctx, "HTMX is a library that allows you to access modern browser features directly from HTML.")

	require.NoError(t, err)
	assert.Len(t, v, 768)
}

func TestGenerator_Integration_ReturnsParsableAnswer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	g := gemini.NewGenerator(newClient(t, ctx), gemini.DefaultLanguageModel)

	text, err := g.Generate(ctx, "Context: HTMX is a library that allows you to access modern browser features directly from HTML.\nQuestion: What is HTMX?\nAnswer:")
	require.NoError(t, err)

	answer, _ := docqa.ParseResponse(text)
	assert.NotEmpty(t, answer.Answer)
	assert.NotEmpty(t, answer.Reasoning)
}
