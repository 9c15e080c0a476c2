// Package metrics computes the per-chunk quality signals that feed the
// document trust score.
//
// Signals, each in [0, 1]:
//   - completeness: 1 when the trimmed text is longer than MinCompleteChars, else 0
//   - accuracy: 1 - misspelled/max(words, 1), spelling checked over the first SpellWordCap words
//   - secure: 0 when any PII pattern matches, else 1
//   - quality: Flesch reading ease / 100, clamped
//   - timeliness: decided by the configured TimelinessPolicy
package metrics

import (
	"math"
	"strings"
	"unicode/utf8"

	"trustrag/internal/domain"
	"trustrag/internal/spell"
	"trustrag/internal/textstat"
)

const (
	DefaultSpellWordCap     = 500
	DefaultMinCompleteChars = 100
)

// Options tunes the extractor thresholds. Zero values select the defaults.
type Options struct {
	SpellWordCap     int
	MinCompleteChars int
}

// Extractor computes ChunkMetrics. It holds only read-only collaborators and
// may be shared across goroutines.
type Extractor struct {
	dict        spell.Dictionary
	tokenizer   textstat.Tokenizer
	readability func(string) float64
	timeliness  TimelinessPolicy
	opts        Options
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDictionary overrides the process-wide spelling dictionary.
func WithDictionary(d spell.Dictionary) Option {
	return func(e *Extractor) { e.dict = d }
}

// WithTokenizer overrides the process-wide tokenizer.
func WithTokenizer(t textstat.Tokenizer) Option {
	return func(e *Extractor) { e.tokenizer = t }
}

// WithReadability overrides the readability formula.
func WithReadability(f func(string) float64) Option {
	return func(e *Extractor) { e.readability = f }
}

// WithTimeliness sets the timeliness policy.
func WithTimeliness(p TimelinessPolicy) Option {
	return func(e *Extractor) { e.timeliness = p }
}

// WithOptions sets extractor thresholds.
func WithOptions(o Options) Option {
	return func(e *Extractor) { e.opts = o }
}

// NewExtractor creates an extractor using the shared dictionary and
// tokenizer and a deterministic "2023" filename timeliness policy unless
// overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		dict:        spell.Default(),
		tokenizer:   textstat.DefaultTokenizer(),
		readability: textstat.FleschReadingEase,
		timeliness:  FilenameMarker("2023", 0.5),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.opts.SpellWordCap <= 0 {
		e.opts.SpellWordCap = DefaultSpellWordCap
	}
	if e.opts.MinCompleteChars <= 0 {
		e.opts.MinCompleteChars = DefaultMinCompleteChars
	}
	return e
}

// Compute returns the metrics for one chunk. filename is the chunk's
// originating filename and is only consulted by the timeliness policy.
func (e *Extractor) Compute(text, filename string) domain.ChunkMetrics {
	return domain.ChunkMetrics{
		Completeness: e.completeness(text),
		Accuracy:     e.accuracy(text),
		Secure:       secure(text),
		Quality:      e.quality(text),
		Timeliness:   clamp01(e.timeliness(filename)),
		TokenCount:   e.tokenizer.CountTokens(text),
	}
}

func (e *Extractor) completeness(text string) float64 {
	if utf8.RuneCountInString(strings.TrimSpace(text)) > e.opts.MinCompleteChars {
		return 1.0
	}
	return 0.0
}

func (e *Extractor) accuracy(text string) float64 {
	words := strings.Fields(text)
	checked := words
	if len(checked) > e.opts.SpellWordCap {
		checked = checked[:e.opts.SpellWordCap]
	}
	misspelled := len(spell.Unknown(e.dict, checked))
	return clamp01(1.0 - float64(misspelled)/float64(max(len(words), 1)))
}

func secure(text string) float64 {
	if ContainsPII(text) {
		return 0.0
	}
	return 1.0
}

func (e *Extractor) quality(text string) (q float64) {
	defer func() {
		if recover() != nil {
			q = 0
		}
	}()
	return clamp01(e.readability(text) / 100.0)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1.0, math.Max(0.0, v))
}
