package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderOptionsOverrideDefaults(t *testing.T) {
	embedder := NewEmbedder("dummy-key",
		WithEmbeddingModel("custom-model"),
		WithEmbeddingDimension(42),
	)

	assert.Equal(t, "custom-model", embedder.ModelName())
	assert.Equal(t, 42, embedder.Dimension())
}

func TestBatchEmbedRejectsInvalidInput(t *testing.T) {
	embedder := NewEmbedder("dummy-key")

	_, err := embedder.BatchEmbed(context.Background(), nil)
	require.Error(t, err)

	tooMany := make([]string, MaxEmbeddingBatchSize+1)
	_, err = embedder.BatchEmbed(context.Background(), tooMany)
	require.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)

	client, err := NewClient("dummy-key", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultCompletionModel, client.ModelName())
}
