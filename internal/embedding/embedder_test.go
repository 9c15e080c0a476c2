package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustrag/internal/config"
)

func TestNew(t *testing.T) {
	e, err := New(config.EmbedderConfig{})
	require.NoError(t, err)
	assert.Equal(t, "tfidf", e.Name())

	t.Setenv("TEST_EMBED_KEY", "k")
	e, err = New(config.EmbedderConfig{Type: "openai", OpenAI: &config.OpenAIEmbedderConfig{APIKeyEnv: "TEST_EMBED_KEY"}})
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())

	_, err = New(config.EmbedderConfig{Type: "openai"})
	assert.Error(t, err)

	_, err = New(config.EmbedderConfig{Type: "word2vec"})
	assert.ErrorContains(t, err, "unknown embedder")
}
