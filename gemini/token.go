package gemini

import (
	"context"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ docqa.TokenCounter = (*TokenCounter)(nil)

// TokenCounter measures synthesis prompts against a token budget without a
// network round trip. The count covers the request Generator sends for the
// prompt, system instruction included.
type TokenCounter struct {
	tok    *tokenizer.LocalTokenizer
	config *genai.CountTokensConfig
}

// NewTokenCounter returns a TokenCounter for the given language model. An
// empty model selects DefaultLanguageModel.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultLanguageModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, docqa.WrapError(err, docqa.EINVALID, "no local tokenizer for model %q", model)
	}
	return &TokenCounter{
		tok:    tok,
		config: &genai.CountTokensConfig{SystemInstruction: BuildConfig().SystemInstruction},
	}, nil
}

// CountTokens returns the number of tokens a Generate call with prompt would
// consume as input.
func (tc *TokenCounter) CountTokens(ctx context.Context, prompt string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	result, err := tc.tok.CountTokens(promptContents(prompt), tc.config)
	if err != nil {
		return 0, docqa.WrapError(err, docqa.EINTERNAL, "failed to count prompt tokens")
	}
	return int(result.TotalTokens), nil
}
