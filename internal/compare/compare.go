// Package compare measures how far the AI-ready and non-AI-ready answers to
// the same question diverge.
package compare

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Verdict is a coarse label for a similarity ratio.
type Verdict int

const (
	Minimal Verdict = iota
	Moderate
	Large
)

const (
	// LargeBelow is the ratio under which answers differ substantially.
	LargeBelow = 0.6
	// ModerateBelow is the ratio under which answers differ moderately.
	ModerateBelow = 0.85
)

func (v Verdict) String() string {
	switch v {
	case Large:
		return "large difference"
	case Moderate:
		return "moderate difference"
	default:
		return "minimal difference"
	}
}

// Result holds the similarity ratio of two answers and its verdict.
type Result struct {
	Ratio   float64
	Verdict Verdict
}

// Ratio returns the character-level matching ratio 2*M/T of a and b, where M
// is the number of matched characters and T the combined length. Two empty
// strings are identical.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

// Judge maps a ratio to a verdict.
func Judge(ratio float64) Verdict {
	switch {
	case ratio < LargeBelow:
		return Large
	case ratio < ModerateBelow:
		return Moderate
	default:
		return Minimal
	}
}

// Answers compares two answers.
func Answers(a, b string) Result {
	r := Ratio(a, b)
	return Result{Ratio: r, Verdict: Judge(r)}
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
