package docqa

import "context"

// TokenCounter counts the input tokens a language model would consume for a
// synthesis prompt. It lets the prompt be trimmed to a token budget before it
// is sent.
type TokenCounter interface {
	CountTokens(ctx context.Context, prompt string) (int, error)
}
