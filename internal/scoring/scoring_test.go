package scoring

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustrag/internal/domain"
	"trustrag/internal/metrics"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.745, 0.74},
		{0.755, 0.76},
		{0.125, 0.12},
		{0.135, 0.14},
		{0.7451, 0.75},
		{0.7449, 0.74},
		{2.0 / 3.0, 0.67},
		{1.0, 1.0},
		{0.9, 0.9},
		{0, 0},
		{-0.745, -0.74},
		{-0.7451, -0.75},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Round2(tc.in), "Round2(%v)", tc.in)
	}
}

// Round2 works on the shortest decimal form, so values whose binary
// representation sits just below the half still round half to even. Python's
// round() gives 2.67 and 0.01 for these two.
func TestRound2_DecimalHalfNotBinaryValue(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 0.02, Round2(0.015))
}

func chunk(parent string, idx int, c, a, s, q, t float64, tokens int) domain.ScoredChunk {
	return domain.ScoredChunk{ParentID: parent, Index: idx, Metrics: domain.ChunkMetrics{
		Completeness: c, Accuracy: a, Secure: s, Quality: q, Timeliness: t, TokenCount: tokens,
	}}
}

func TestAggregate_Empty(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestAggregate_GroupsInFirstSeenOrder(t *testing.T) {
	docs, err := Aggregate([]domain.ScoredChunk{
		chunk("b.pdf", 0, 1, 1, 1, 1, 1, 10),
		chunk("a.pdf", 0, 0, 1, 1, 0.5, 0.5, 7),
		chunk("b.pdf", 1, 0, 0.9, 1, 0.5, 1, 5),
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "b.pdf", docs[0].File)
	assert.Equal(t, domain.Score(0.5), docs[0].Completeness)
	assert.Equal(t, domain.Score(0.95), docs[0].Accuracy)
	assert.Equal(t, domain.Score(1.0), docs[0].Secure)
	assert.Equal(t, domain.Score(0.75), docs[0].Quality)
	assert.Equal(t, domain.Score(1.0), docs[0].Timeliness)
	assert.Equal(t, 15, docs[0].TokenCount)
	// (0.5 + 0.95 + 1 + 0.75 + 1) / 5 = 0.84
	assert.Equal(t, domain.Score(0.84), docs[0].AITrustScore)

	assert.Equal(t, "a.pdf", docs[1].File)
	assert.Equal(t, 7, docs[1].TokenCount)
	assert.Equal(t, domain.Score(0.6), docs[1].AITrustScore)
}

func TestAggregate_TwoStageRounding(t *testing.T) {
	docs, err := Aggregate([]domain.ScoredChunk{
		chunk("x.pdf", 0, 0.4951, 0.4951, 0.4951, 0.4951, 0.4751, 1),
	})
	require.NoError(t, err)

	// Components round to 0.50, 0.50, 0.50, 0.50, 0.48; their mean 0.496 rounds to 0.50.
	assert.Equal(t, domain.Score(0.5), docs[0].AITrustScore)
	// Averaging the raw components first would give 0.49.
	singleStage := Round2((0.4951*4 + 0.4751) / 5)
	assert.Equal(t, 0.49, singleStage)
	assert.NotEqual(t, singleStage, float64(docs[0].AITrustScore))
}

func TestAggregate_ChunkOrderIndependent(t *testing.T) {
	var chunks []domain.ScoredChunk
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 40 {
		chunks = append(chunks, chunk("doc.pdf", i,
			float64(rng.IntN(2)), rng.Float64(), float64(rng.IntN(2)), rng.Float64(), 0.5+0.5*float64(rng.IntN(2)), rng.IntN(300)))
	}
	want, err := Aggregate(chunks)
	require.NoError(t, err)

	for range 10 {
		shuffled := append([]domain.ScoredChunk(nil), chunks...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := Aggregate(shuffled)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestAggregate_TrustScoreBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var chunks []domain.ScoredChunk
	for i := range 200 {
		chunks = append(chunks, chunk(string(rune('a'+i%7))+".pdf", i,
			float64(rng.IntN(2)), rng.Float64(), float64(rng.IntN(2)), rng.Float64(), rng.Float64(), 1))
	}
	docs, err := Aggregate(chunks)
	require.NoError(t, err)
	for _, d := range docs {
		assert.GreaterOrEqual(t, float64(d.AITrustScore), 0.0)
		assert.LessOrEqual(t, float64(d.AITrustScore), 1.0)
		assert.Equal(t, TrustScore(d), float64(d.AITrustScore))
	}
}

type countingScorer struct{ calls chan string }

func (c countingScorer) Compute(text, filename string) domain.ChunkMetrics {
	c.calls <- filename
	return domain.ChunkMetrics{Completeness: 1, Accuracy: 1, Secure: 1, Quality: 1, Timeliness: 1, TokenCount: len(text)}
}

func TestPipeline_PreservesInputOrder(t *testing.T) {
	chunks := make([]domain.Chunk, 50)
	for i := range chunks {
		chunks[i] = domain.Chunk{ParentID: "p.pdf", Index: i, Filename: "p_x.txt", Text: string(make([]byte, i))}
	}
	s := countingScorer{calls: make(chan string, len(chunks))}
	scored, err := NewPipeline(s, 8).ScoreChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, scored, 50)
	for i, sc := range scored {
		assert.Equal(t, i, sc.Index)
		assert.Equal(t, i, sc.Metrics.TokenCount)
	}
	assert.Len(t, s.calls, 50)
}

func TestPipeline_RunEmpty(t *testing.T) {
	_, err := NewPipeline(metrics.NewExtractor(), 2).Run(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrEmptyCorpus))
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPipeline(metrics.NewExtractor(), 2).Run(ctx, []domain.Chunk{{ParentID: "a.pdf", Text: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Idempotent(t *testing.T) {
	chunks := []domain.Chunk{
		{ParentID: "a.pdf", Index: 0, Filename: "a_0.txt", Text: "Take one tablet by mouth once daily with or without food. Do not stop taking this medicine without talking to your doctor."},
		{ParentID: "a.pdf", Index: 1, Filename: "a_1.txt", Text: "Call 555-123-4567 to report side effects."},
		{ParentID: "b2023.pdf", Index: 0, Filename: "b2023_0.txt", Text: "Store at room temperature away from light and moisture."},
	}
	p := NewPipeline(metrics.NewExtractor(metrics.WithTimeliness(metrics.FilenameMarker("2023", 0.5))), 4)
	first, err := p.Run(context.Background(), chunks)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.Score(1.0), second[1].Timeliness)
	assert.Equal(t, domain.Score(0.5), second[0].Secure)
}

func TestPipeline_SeededCoinFlipStableAcrossRuns(t *testing.T) {
	chunks := make([]domain.Chunk, 200)
	for i := range chunks {
		parent := fmt.Sprintf("doc%d", i%20)
		chunks[i] = domain.Chunk{
			ParentID: parent + ".pdf",
			Index:    i / 20,
			Filename: fmt.Sprintf("%s_%d.txt", parent, i/20),
			Text:     "Keep this medicine out of the reach of children.",
		}
	}
	p := NewPipeline(metrics.NewExtractor(metrics.WithTimeliness(metrics.CoinFlip("2023", 0.5, 42))), 8)
	first, err := p.ScoreChunks(context.Background(), chunks)
	require.NoError(t, err)
	for run := range 20 {
		again, err := p.ScoreChunks(context.Background(), chunks)
		require.NoError(t, err)
		for i := range again {
			require.Equal(t, first[i].Metrics.Timeliness, again[i].Metrics.Timeliness, "run %d chunk %s", run, chunks[i].Filename)
		}
	}
}

func TestPipeline_ShortEmailChunkScoresLow(t *testing.T) {
	text := "Contact pharmacovigilance at adverse@pharmaco.com."
	require.Len(t, text, 50)

	p := NewPipeline(metrics.NewExtractor(metrics.WithTimeliness(metrics.Fixed(1))), 1)
	docs, err := p.Run(context.Background(), []domain.Chunk{{ParentID: "label.pdf", Filename: "label_0.txt", Text: text}})
	require.NoError(t, err)

	d := docs[0]
	assert.Equal(t, domain.Score(0), d.Completeness)
	assert.Equal(t, domain.Score(0), d.Secure)
	assert.LessOrEqual(t, float64(d.AITrustScore), 0.6)
}
