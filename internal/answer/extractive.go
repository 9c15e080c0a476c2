// Package answer produces tier answers from retrieved passages.
package answer

import (
	"context"
	"strings"

	"trustrag/internal/summarizer"
)

// Extractive answers by selecting the passages' most relevant sentences. It
// needs no model and is deterministic.
type Extractive struct {
	summarizer   *summarizer.FrequencySummarizer
	maxSentences int
}

// NewExtractive creates an extractive answerer returning at most
// maxSentences sentences.
func NewExtractive(maxSentences int) *Extractive {
	return &Extractive{summarizer: summarizer.NewFrequencySummarizer(), maxSentences: maxSentences}
}

// Answer implements domain.Answerer.
func (e *Extractive) Answer(ctx context.Context, question string, passages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return "", nil
	}
	return e.summarizer.SummarizeQuery(strings.Join(passages, "\n"), question, e.maxSentences)
}
