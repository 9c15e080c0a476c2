package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_NotPrepared(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestPrepare_Empty(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
	assert.Error(t, NewEmbedder().Prepare([]string{"the and of"}))
}

func TestEmbed_NormalisedAndStable(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"take one tablet daily",
		"store tablets at room temperature",
		"report side effects to your doctor",
	}))
	assert.Equal(t, "tfidf", e.Name())
	assert.Greater(t, e.Dimension(), 0)

	v1, err := e.Embed(context.Background(), "Take the tablet daily")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "Take the tablet daily")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, e.Dimension())

	norm := 0.0
	for _, v := range v1 {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	zero, err := e.Embed(context.Background(), "completely unrelated words")
	require.NoError(t, err)
	for _, v := range zero {
		assert.Equal(t, 0.0, v)
	}
}

func TestEmbed_Cancelled(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"tablet"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Embed(ctx, "tablet")
	assert.ErrorIs(t, err, context.Canceled)
}
