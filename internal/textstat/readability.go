package textstat

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	sentenceEndRe = regexp.MustCompile(`[.!?]+(\s|$)`)
	vowelGroupRe  = regexp.MustCompile(`[aeiouy]+`)
)

// Words returns the words of text with surrounding punctuation removed.
// Tokens made only of punctuation are dropped.
func Words(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// SentenceCount counts sentence terminators, with a minimum of one for any
// text that contains a word.
func SentenceCount(text string) int {
	if len(Words(text)) == 0 {
		return 0
	}
	n := len(sentenceEndRe.FindAllStringIndex(text, -1))
	if n == 0 {
		return 1
	}
	return n
}

// Syllables estimates the syllable count of a single English word from its
// vowel groups, discounting a silent trailing "e".
func Syllables(word string) int {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }))
	if w == "" {
		return 0
	}
	if len(w) <= 3 {
		return 1
	}
	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		w = strings.TrimSuffix(w, "e")
	} else if strings.HasSuffix(w, "es") || strings.HasSuffix(w, "ed") {
		w = w[:len(w)-2]
	}
	n := len(vowelGroupRe.FindAllStringIndex(w, -1))
	if n == 0 {
		return 1
	}
	return n
}

// FleschReadingEase computes 206.835 - 1.015*(words/sentences) -
// 84.6*(syllables/words). Text without words scores 0. The raw value is not
// bounded and may fall outside 0..100 for degenerate input.
func FleschReadingEase(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	sentences := SentenceCount(text)
	syllables := 0
	for _, w := range words {
		syllables += Syllables(w)
	}
	wc := float64(len(words))
	return 206.835 - 1.015*(wc/float64(sentences)) - 84.6*(float64(syllables)/wc)
}
