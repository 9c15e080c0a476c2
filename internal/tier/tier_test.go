package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trustrag/internal/domain"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
	}{
		{1.0, High},
		{0.75, High},
		{0.7499, Medium},
		{0.5, Medium},
		{0.4999, Low},
		{0, Low},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score, DefaultThresholds), "score %v", tc.score)
	}
}

func TestClassifyBinary(t *testing.T) {
	assert.Equal(t, AIReady, ClassifyBinary(0.75, DefaultPartitionThreshold))
	assert.Equal(t, NonAIReady, ClassifyBinary(0.7499, DefaultPartitionThreshold))
	assert.Equal(t, AIReady, ClassifyBinary(0.6, 0.6))
}

func TestBands_GapIsExplicit(t *testing.T) {
	b := DefaultBands
	assert.Equal(t, BandHigh, b.Band(0.76))
	assert.Equal(t, BandLow, b.Band(0.75))
	assert.Equal(t, BandGap, b.Band(0.755))
	assert.Equal(t, BandLow, b.Band(0.1))
	assert.NoError(t, b.Validate())

	closed := Bands{High: 0.75, Low: 0.75}
	assert.Equal(t, BandHigh, closed.Band(0.75), "high wins when the bands touch")
	assert.Error(t, Bands{High: 0.5, Low: 0.6}.Validate())
}

func TestPartition_TotalAndDisjoint(t *testing.T) {
	scores := []float64{0, 0.3, 0.5, 0.74, 0.75, 0.76, 0.9, 1}
	type doc struct {
		id    int
		score float64
	}
	docs := make([]doc, len(scores))
	for i, s := range scores {
		docs[i] = doc{i, s}
	}
	for _, threshold := range []float64{-1, 0, 0.5, 0.75, 0.9, 1, 2} {
		ready, notReady := Partition(docs, func(d doc) float64 { return d.score }, threshold)
		assert.Equal(t, len(docs), len(ready)+len(notReady), "threshold %v", threshold)

		seen := map[int]bool{}
		for _, d := range ready {
			assert.GreaterOrEqual(t, d.score, threshold)
			seen[d.id] = true
		}
		for _, d := range notReady {
			assert.Less(t, d.score, threshold)
			assert.False(t, seen[d.id], "doc %d in both halves", d.id)
			seen[d.id] = true
		}
		assert.Len(t, seen, len(docs))
	}
}

func TestPartition_Empty(t *testing.T) {
	ready, notReady := Partition([]int(nil), func(int) float64 { return 1 }, 0.75)
	assert.Empty(t, ready)
	assert.Empty(t, notReady)
}

func TestScoreIndex_UnscoredParentIsZero(t *testing.T) {
	idx := NewScoreIndex([]domain.DocumentScore{{File: "a.pdf", AITrustScore: 0.8}})
	assert.Equal(t, 0.8, idx.ChunkScore(domain.Chunk{ParentID: "a.pdf"}))
	assert.Equal(t, 0.0, idx.ChunkScore(domain.Chunk{ParentID: "b.pdf"}))
	_, ok := idx.Lookup("b.pdf")
	assert.False(t, ok)
}

func TestSummarize_AverageTierDiffersFromDocuments(t *testing.T) {
	records := []domain.DocumentScore{
		{File: "good.pdf", AITrustScore: 0.9},
		{File: "bad.pdf", AITrustScore: 0.3},
	}
	s := Summarize(records, DefaultThresholds)
	assert.Equal(t, 2, s.Documents)
	assert.InDelta(t, 0.6, s.Average, 1e-9)
	assert.Equal(t, Medium, s.Tier)

	assert.Equal(t, High, Classify(float64(records[0].AITrustScore), DefaultThresholds))
	assert.Equal(t, Low, Classify(float64(records[1].AITrustScore), DefaultThresholds))
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{Tier: Low}, Summarize(nil, DefaultThresholds))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "High", High.String())
	assert.Equal(t, "AI-ready", AIReady.String())
	assert.Equal(t, "gap", BandGap.String())
}
