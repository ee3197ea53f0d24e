package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/docqa"
)

// PromptTemplate is filled with the retrieved context and the question.
const PromptTemplate = `You are an expert documentation assistant. Use the following documentation context to answer the question. If you don't know the answer, just say that you don't have enough information. Keep the answer concise and clear.

First reason about the context inside <think> and </think> tags. Then write the answer after the closing tag.

Context:
{context}

Question:
{question}

Answer:`

// BuildPrompt fills PromptTemplate. Placeholders inside the substituted
// values are left alone.
func BuildPrompt(docs, question string) string {
	return strings.NewReplacer("{context}", docs, "{question}", question).Replace(PromptTemplate)
}

// Ensure Synthesizer implements docqa.Synthesizer at compile time.
var _ docqa.Synthesizer = (*Synthesizer)(nil)

// Synthesizer implements docqa.Synthesizer with a language model.
type Synthesizer struct {
	Generator docqa.Generator

	// When both are set, the least similar chunks are dropped until the
	// prompt has at most TokenBudget tokens.
	TokenCounter docqa.TokenCounter
	TokenBudget  int

	Logger *slog.Logger
}

func (s *Synthesizer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Synthesize answers question from results, which must be ordered by
// ascending distance.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []docqa.SearchResult) (*docqa.Answer, error) {
	prompt := s.prompt(ctx, question, results)

	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ESYNTHESIS {
			return nil, err
		}
		return nil, docqa.WrapError(err, docqa.ESYNTHESIS, "language model failed")
	}

	answer, err := docqa.ParseResponse(text)
	if err != nil {
		s.logger().Warn("unparsable model response", "model", s.Generator.Model(), "err", err)
	}
	return answer, nil
}

func (s *Synthesizer) prompt(ctx context.Context, question string, results []docqa.SearchResult) string {
	prompt := BuildPrompt(docqa.FormatContext(results), question)
	if s.TokenCounter == nil || s.TokenBudget <= 0 {
		return prompt
	}

	for len(results) > 0 {
		n, err := s.TokenCounter.CountTokens(ctx, prompt)
		if err != nil {
			s.logger().Warn("token counting failed, sending untrimmed prompt", "err", err)
			return prompt
		}
		if n <= s.TokenBudget {
			return prompt
		}
		results = results[:len(results)-1]
		prompt = BuildPrompt(docqa.FormatContext(results), question)
		s.logger().Debug("dropped chunk to fit token budget", "tokens", n, "budget", s.TokenBudget, "remaining", len(results))
	}
	return prompt
}
