// Package gemini implements embedding and text generation with Google Gemini.
package gemini

// Default model identifiers.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultLanguageModel  = "gemini-2.5-flash"
)
