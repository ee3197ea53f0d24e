package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate_ReturnsErrorWhenPromptEmpty(t *testing.T) {
	t.Parallel()

	g := gemini.NewGenerator(nil, "")

	_, err := g.Generate(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
}

func TestNewGenerator_DefaultsModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, gemini.DefaultLanguageModel, gemini.NewGenerator(nil, "").Model())
	assert.Equal(t, "gemini-2.0-flash", gemini.NewGenerator(nil, "gemini-2.0-flash").Model())
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, docqa.ReasoningOpen)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, docqa.ReasoningClose)
	require.NotNil(t, config.Temperature)
	assert.Zero(t, *config.Temperature)
}
