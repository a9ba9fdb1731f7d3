package morse

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ShortWordMaxLen is the longest a word may be, after trimming punctuation,
// and still read as a dot.
const ShortWordMaxLen = 3

// DefaultShortWords stand for dots when no list is configured.
var DefaultShortWords = []string{
	"a", "an", "at", "as", "by", "he", "hi", "in", "is", "it",
	"me", "my", "no", "of", "on", "or", "so", "to", "up", "us", "we",
}

// DefaultLongWords stand for dashes when no list is configured.
var DefaultLongWords = []string{
	"about", "above", "across", "actually", "although", "always",
	"america", "another", "because", "between", "business", "company",
	"consider", "different", "important", "information", "something",
}

// WordLists is the immutable vocabulary the codec draws cover words from.
// Build it once and share it; nothing mutates it after construction.
type WordLists struct {
	short []string
	long  []string
}

// NewWordLists copies short and long. An empty list is replaced by the
// matching default so a WordLists is never empty.
func NewWordLists(short, long []string) *WordLists {
	if len(short) == 0 {
		short = DefaultShortWords
	}
	if len(long) == 0 {
		long = DefaultLongWords
	}
	return &WordLists{
		short: append([]string(nil), short...),
		long:  append([]string(nil), long...),
	}
}

// DefaultWordLists returns the built-in vocabulary.
func DefaultWordLists() *WordLists {
	return NewWordLists(nil, nil)
}

// Short returns a copy of the dot words.
func (w *WordLists) Short() []string {
	return append([]string(nil), w.short...)
}

// Long returns a copy of the dash words.
func (w *WordLists) Long() []string {
	return append([]string(nil), w.long...)
}

// Validate reports entries that would not decode to their own symbol: short
// words longer than ShortWordMaxLen, long words not longer than it, and
// words containing whitespace or the '.' and ',' separators.
func (w *WordLists) Validate() error {
	var problems []string
	for _, word := range w.short {
		if reason := badWord(word); reason != "" {
			problems = append(problems, fmt.Sprintf("short word %q %s", word, reason))
		} else if wordLen(word) > ShortWordMaxLen {
			problems = append(problems, fmt.Sprintf("short word %q is longer than %d characters", word, ShortWordMaxLen))
		}
	}
	for _, word := range w.long {
		if reason := badWord(word); reason != "" {
			problems = append(problems, fmt.Sprintf("long word %q %s", word, reason))
		} else if wordLen(word) <= ShortWordMaxLen {
			problems = append(problems, fmt.Sprintf("long word %q is not longer than %d characters", word, ShortWordMaxLen))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid word lists: %s", strings.Join(problems, "; "))
	}
	return nil
}

func badWord(word string) string {
	switch {
	case word == "":
		return "is empty"
	case strings.ContainsAny(word, ".,"):
		return "contains a separator"
	case len(strings.Fields(word)) != 1:
		return "contains whitespace"
	}
	return ""
}

const wordPunctuation = ".,;:!?"

// wordLen is the rune length of word with surrounding punctuation removed.
func wordLen(word string) int {
	return utf8.RuneCountInString(strings.Trim(word, wordPunctuation))
}
