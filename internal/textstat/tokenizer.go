// Package textstat provides the text statistics the chunk metrics are built
// on: BPE token counts, word and sentence splitting, syllable estimation and
// the Flesch reading-ease formula.
package textstat

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE encoding token counts are reported in.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts the tokens of a text.
type Tokenizer interface {
	CountTokens(text string) int
}

// BPETokenizer counts tokens with a tiktoken encoding. Special-token markup
// such as "<|endoftext|>" is counted as ordinary text.
type BPETokenizer struct {
	enc *tiktoken.Tiktoken
}

var loaderOnce sync.Once

// NewBPETokenizer loads encoding from the ranks embedded in the binary, so no
// network access is needed.
func NewBPETokenizer(encoding string) (*BPETokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encoding, err)
	}
	return &BPETokenizer{enc: enc}, nil
}

// CountTokens returns the number of BPE tokens in text.
func (t *BPETokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.EncodeOrdinary(text))
}

// PatternTokenizer splits text with a GPT-style pre-tokenization pattern:
// contractions, letter runs with an optional leading symbol, digit groups of
// at most three, punctuation runs and whitespace. Its counts approximate a
// BPE count from below.
type PatternTokenizer struct {
	pattern *regexp.Regexp
}

const tokenPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+`

// NewPatternTokenizer returns a tokenizer that needs no encoding data.
func NewPatternTokenizer() *PatternTokenizer {
	return &PatternTokenizer{pattern: regexp.MustCompile(tokenPattern)}
}

// Tokenize returns the tokens of text in order.
func (t *PatternTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return t.pattern.FindAllString(text, -1)
}

// CountTokens is a shorthand for len(Tokenize(text)).
func (t *PatternTokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.pattern.FindAllStringIndex(text, -1))
}

var (
	defaultTokenizer     Tokenizer
	defaultTokenizerOnce sync.Once
)

// DefaultTokenizer returns the process-wide cl100k_base tokenizer, or the
// pattern tokenizer if the encoding cannot be loaded. It is safe for
// concurrent use.
func DefaultTokenizer() Tokenizer {
	defaultTokenizerOnce.Do(func() {
		bpe, err := NewBPETokenizer(DefaultEncoding)
		if err != nil {
			slog.Warn("falling back to pattern tokenizer", "encoding", DefaultEncoding, "error", err)
			defaultTokenizer = NewPatternTokenizer()
			return
		}
		defaultTokenizer = bpe
	})
	return defaultTokenizer
}
