// Package spell provides the reference dictionary used by the accuracy
// signal. Dictionaries are immutable after construction and safe to share
// between goroutines.
package spell

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// words.txt.gz is a Unix-style English word list of about 132k entries,
// possessives included.
//
//go:embed words.txt.gz
var embeddedWords []byte

// Dictionary answers whether a word is spelled correctly.
type Dictionary interface {
	Known(word string) bool
}

// WordList is a case-insensitive set of known words.
type WordList struct {
	words map[string]struct{}
}

// NewWordList builds a dictionary from the given words.
func NewWordList(words []string) *WordList {
	wl := &WordList{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			wl.words[w] = struct{}{}
		}
	}
	return wl
}

// Read builds a dictionary from whitespace-separated words, e.g. a
// /usr/share/dict/words style file.
func Read(r io.Reader) (*WordList, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var words []string
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return NewWordList(words), nil
}

// LoadFile reads a dictionary from disk.
func LoadFile(path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

var (
	defaultDict     *WordList
	defaultDictOnce sync.Once
)

// Default returns the embedded process-wide dictionary.
func Default() *WordList {
	defaultDictOnce.Do(func() {
		zr, err := gzip.NewReader(bytes.NewReader(embeddedWords))
		if err != nil {
			panic(fmt.Sprintf("spell: embedded word list: %v", err))
		}
		defer zr.Close()
		defaultDict, err = Read(zr)
		if err != nil {
			panic(fmt.Sprintf("spell: embedded word list: %v", err))
		}
	})
	return defaultDict
}

// Len returns the number of distinct words.
func (w *WordList) Len() int { return len(w.words) }

// Known reports whether word is in the list, ignoring case.
func (w *WordList) Known(word string) bool {
	_, ok := w.words[strings.ToLower(word)]
	return ok
}

// Unknown returns the distinct misspelled words among words, lower-cased.
// Numbers and tokens without letters are not checked.
func Unknown(d Dictionary, words []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, raw := range words {
		w := strings.ToLower(strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if !shouldCheck(w) {
			continue
		}
		if !d.Known(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

func shouldCheck(w string) bool {
	if w == "" {
		return false
	}
	if _, err := strconv.ParseFloat(w, 64); err == nil {
		return false
	}
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}
