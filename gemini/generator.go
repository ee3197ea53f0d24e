package gemini

import (
	"context"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
)

// Ensure Generator implements docqa.Generator at compile time.
var _ docqa.Generator = (*Generator)(nil)

// Generator implements docqa.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultLanguageModel
	}
	return &Generator{client: client, model: model}
}

// Model returns the language model identifier.
func (g *Generator) Model() string { return g.model }

// Generate returns the model response to prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", docqa.Errorf(docqa.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, promptContents(prompt), BuildConfig())
	if err != nil {
		return "", docqa.WrapError(err, docqa.ESYNTHESIS, "gemini generation failed")
	}
	if result == nil {
		return "", docqa.Errorf(docqa.ESYNTHESIS, "gemini returned nil result")
	}

	return result.Text(), nil
}

func promptContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an expert documentation assistant. Answer based only on the documentation context provided. " +
					"Write your reasoning between " + docqa.ReasoningOpen + " and " + docqa.ReasoningClose + " tags, then give the answer.",
			}},
		},
		Temperature: &temp,
	}
}
