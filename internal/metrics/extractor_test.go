package metrics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustrag/internal/domain"
	"trustrag/internal/spell"
)

func assertBounded(t *testing.T, m domain.ChunkMetrics) {
	t.Helper()
	for name, v := range map[string]float64{
		"completeness": m.Completeness,
		"accuracy":     m.Accuracy,
		"secure":       m.Secure,
		"quality":      m.Quality,
		"timeliness":   m.Timeliness,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
}

func TestCompute_EmptyText(t *testing.T) {
	e := NewExtractor(WithTimeliness(Fixed(0.5)))
	m := e.Compute("", "label_0.txt")

	assert.Equal(t, 0.0, m.Completeness)
	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 1.0, m.Secure)
	assert.Equal(t, 0.0, m.Quality)
	assert.Equal(t, 0.5, m.Timeliness)
	assert.Equal(t, 0, m.TokenCount)
}

func TestCompute_SignalsBounded(t *testing.T) {
	e := NewExtractor()
	texts := []string{
		"",
		"   \n\t ",
		"a",
		"!!!! ???? ....",
		strings.Repeat("Pharmacokinetic considerations necessitate individualized regimens ", 40),
		strings.Repeat("The cat sat. ", 200),
		"Call 555-123-4567 or mail jane.doe@example.com for the 123-45-6789 record.",
		strings.Repeat("zzq ", 1000),
	}
	for _, text := range texts {
		assertBounded(t, e.Compute(text, "doc_1.txt"))
	}
}

func TestCompute_Completeness(t *testing.T) {
	e := NewExtractor()
	assert.Equal(t, 0.0, e.Compute(strings.Repeat("a", 100), "x_0.txt").Completeness)
	assert.Equal(t, 1.0, e.Compute(strings.Repeat("a", 101), "x_0.txt").Completeness)
	assert.Equal(t, 0.0, e.Compute("   "+strings.Repeat("a", 100)+"\n\n", "x_0.txt").Completeness)
}

func TestCompute_DefaultDictionaryAccuracy(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. Patients should tell their doctor " +
		"about any prescription medicines, vitamins, and herbal supplements they are taking " +
		"before starting this medicine. Store the tablets at room temperature away from moisture."
	m := NewExtractor().Compute(text, "label_0.txt")
	assert.GreaterOrEqual(t, m.Accuracy, 0.95)

	m = NewExtractor().Compute("Take teh tabelts with watr daily.", "label_0.txt")
	assert.InDelta(t, 1.0-3.0/6.0, m.Accuracy, 1e-12)
}

func TestCompute_AccuracyCapsSpellCheck(t *testing.T) {
	dict := spell.NewWordList([]string{"ok"})
	e := NewExtractor(WithDictionary(dict), WithOptions(Options{SpellWordCap: 4}))

	// Only the first four words are checked; the denominator is all six words.
	m := e.Compute("ok bad ok worse terrible awful", "x_0.txt")
	assert.InDelta(t, 1.0-2.0/6.0, m.Accuracy, 1e-12)
}

func TestCompute_AccuracyCountsDistinctMisspellings(t *testing.T) {
	dict := spell.NewWordList([]string{"ok"})
	e := NewExtractor(WithDictionary(dict))
	m := e.Compute("bad bad bad ok", "x_0.txt")
	assert.InDelta(t, 0.75, m.Accuracy, 1e-12)
}

func TestCompute_SecureAnyPatternZeroes(t *testing.T) {
	e := NewExtractor()
	cases := map[string]float64{
		"Patient SSN 123-45-6789 on file.":       0,
		"Call us at (555) 123-4567 any time.":    0,
		"Questions: safety@pharma.example.org.":  0,
		"Take one tablet daily with water.":      1,
		"Store below 25 degrees, batch 12 of 40": 1,
	}
	for text, want := range cases {
		assert.Equal(t, want, e.Compute(text, "x_0.txt").Secure, text)
	}
}

func TestCompute_QualityClampedAndPanicSafe(t *testing.T) {
	high := NewExtractor(WithReadability(func(string) float64 { return 250 }))
	assert.Equal(t, 1.0, high.Compute("text", "x_0.txt").Quality)

	low := NewExtractor(WithReadability(func(string) float64 { return -80 }))
	assert.Equal(t, 0.0, low.Compute("text", "x_0.txt").Quality)

	boom := NewExtractor(WithReadability(func(string) float64 { panic("degenerate") }))
	assert.Equal(t, 0.0, boom.Compute("text", "x_0.txt").Quality)

	mid := NewExtractor(WithReadability(func(string) float64 { return 62 }))
	assert.InDelta(t, 0.62, mid.Compute("text", "x_0.txt").Quality, 1e-12)
}

func TestCompute_ParallelCallsAgree(t *testing.T) {
	e := NewExtractor()
	text := "Take one tablet by mouth daily. Contact your doctor if symptoms continue for more than a week after starting treatment."
	want := e.Compute(text, "label2023_3.txt")

	results := make(chan domain.ChunkMetrics, 16)
	for range 16 {
		go func() { results <- e.Compute(text, "label2023_3.txt") }()
	}
	for range 16 {
		require.Equal(t, want, <-results)
	}
}

func TestTimelinessPolicies(t *testing.T) {
	marker := FilenameMarker("2023", 0.5)
	assert.Equal(t, 1.0, marker("report2023_1.txt"))
	assert.Equal(t, 0.5, marker("report_1.txt"))

	assert.Equal(t, 0.3, Fixed(0.3)("anything"))
	assert.Equal(t, 1.0, Fixed(7)("anything"))

	assert.Equal(t, 1.0, CoinFlip("2023", 0.5, 42)("x2023_0.txt"))
}

func TestCoinFlip_KeyedBySeedAndFilename(t *testing.T) {
	a := CoinFlip("2023", 0.5, 42)
	b := CoinFlip("2023", 0.5, 42)
	names := make([]string, 64)
	for i := range names {
		names[i] = fmt.Sprintf("old_%d.txt", i)
	}
	first := make(map[string]float64, len(names))
	seen := map[float64]bool{}
	for _, n := range names {
		first[n] = a(n)
		require.Contains(t, []float64{0.5, 1.0}, first[n])
		seen[first[n]] = true
	}
	assert.Len(t, seen, 2)

	// Reverse order on a fresh policy, and repeat calls on the old one.
	for i := len(names) - 1; i >= 0; i-- {
		n := names[i]
		require.Equal(t, first[n], b(n), n)
		require.Equal(t, first[n], a(n), n)
	}

	other := CoinFlip("2023", 0.5, 7)
	differs := false
	for _, n := range names {
		if other(n) != first[n] {
			differs = true
			break
		}
	}
	assert.True(t, differs, "a different seed should change some flips")
}

func TestContainsPII(t *testing.T) {
	assert.True(t, ContainsPII("reach me at a.b+c@d-e.com"))
	assert.False(t, ContainsPII("no personal data here"))
}
