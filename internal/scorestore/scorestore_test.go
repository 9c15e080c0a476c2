package scorestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustrag/internal/domain"
)

func sampleRecords() []domain.DocumentScore {
	return []domain.DocumentScore{
		{File: "b.pdf", Completeness: 1, Accuracy: 0.9, Secure: 1, Quality: 0.62, Timeliness: 0.5, AITrustScore: 0.8, TokenCount: 412},
		{File: "a.pdf", Completeness: 0, Accuracy: 1, Secure: 0, Quality: 0.35, Timeliness: 1, AITrustScore: 0.47, TokenCount: 13},
	}
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode(sampleRecords()[:1])
	require.NoError(t, err)
	want := `[
  {
    "file": "b.pdf",
    "completeness": 1.0,
    "accuracy": 0.9,
    "secure": 1.0,
    "quality": 0.62,
    "timeliness": 0.5,
    "ai_trust_score": 0.8,
    "token_count": 412
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metrics.json")
	require.NoError(t, Write(path, sampleRecords()))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_EmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, Write(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Read(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoScores)
}
