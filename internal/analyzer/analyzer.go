// Package analyzer computes statistics that reveal hidden content in text.
//
// Every function is pure and total: empty input yields a zeroed result and
// nothing returns an error. Lengths and positions count runes, not bytes.
package analyzer

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Zero width code points counted by the analyzer.
const (
	ZWSP = '\u200b' // zero width space
	ZWNJ = '\u200c' // zero width non-joiner
	ZWJ  = '\u200d' // zero width joiner
)

// ShortWordMaxLen is the longest a punctuation-stripped word may be and
// still count as short.
const ShortWordMaxLen = 3

const wordPunctuation = ".,;:!?"

// GlyphSet reports whether a rune is a known homoglyph substitute.
type GlyphSet interface {
	IsSubstitute(r rune) bool
}

// TextChanges describes how a stego text differs from its cover.
type TextChanges struct {
	OriginalLength   int     `json:"original_length" yaml:"original_length"`
	StegoLength      int     `json:"stego_length" yaml:"stego_length"`
	LengthDifference int     `json:"length_difference" yaml:"length_difference"`
	DifferentChars   int     `json:"different_chars" yaml:"different_chars"`
	ChangeRatio      float64 `json:"change_ratio" yaml:"change_ratio"`
}

// ZeroWidthStats counts the invisible marks in a text.
type ZeroWidthStats struct {
	ZWSPCount int     `json:"zwsp_count" yaml:"zwsp_count"`
	ZWJCount  int     `json:"zwj_count" yaml:"zwj_count"`
	ZWNJCount int     `json:"zwnj_count" yaml:"zwnj_count"`
	Total     int     `json:"total_zero_width" yaml:"total_zero_width"`
	Ratio     float64 `json:"zero_width_ratio" yaml:"zero_width_ratio"`
}

// UnicodeStats counts homoglyph substitutes in a text.
type UnicodeStats struct {
	HomoglyphCount int     `json:"homoglyph_count" yaml:"homoglyph_count"`
	HomoglyphRatio float64 `json:"homoglyph_ratio" yaml:"homoglyph_ratio"`
}

// WordStats is the short/long word mix of a text.
type WordStats struct {
	ShortWords      int     `json:"short_words" yaml:"short_words"`
	LongWords       int     `json:"long_words" yaml:"long_words"`
	TotalWords      int     `json:"total_words" yaml:"total_words"`
	ShortWordsRatio float64 `json:"short_words_ratio" yaml:"short_words_ratio"`
	LongWordsRatio  float64 `json:"long_words_ratio" yaml:"long_words_ratio"`
	ShortLongRatio  float64 `json:"short_long_ratio" yaml:"short_long_ratio"`
}

// AnalyzeTextChanges compares original and stego rune by rune over their
// common prefix length.
func AnalyzeTextChanges(original, stego string) TextChanges {
	a, b := []rune(original), []rune(stego)

	diff := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			diff++
		}
	}

	return TextChanges{
		OriginalLength:   len(a),
		StegoLength:      len(b),
		LengthDifference: len(b) - len(a),
		DifferentChars:   diff,
		ChangeRatio:      ratio(diff, len(a)),
	}
}

// AnalyzeZeroWidth counts each zero width mark in stego.
func AnalyzeZeroWidth(stego string) ZeroWidthStats {
	var s ZeroWidthStats
	for _, r := range stego {
		switch r {
		case ZWSP:
			s.ZWSPCount++
		case ZWJ:
			s.ZWJCount++
		case ZWNJ:
			s.ZWNJCount++
		}
	}
	s.Total = s.ZWSPCount + s.ZWJCount + s.ZWNJCount
	s.Ratio = ratio(s.Total, utf8.RuneCountInString(stego))
	return s
}

// AnalyzeUnicode counts the runes of stego that glyphs knows as substitutes.
func AnalyzeUnicode(stego string, glyphs GlyphSet) UnicodeStats {
	if glyphs == nil {
		return UnicodeStats{}
	}

	n, total := 0, 0
	for _, r := range stego {
		total++
		if glyphs.IsSubstitute(r) {
			n++
		}
	}
	return UnicodeStats{HomoglyphCount: n, HomoglyphRatio: ratio(n, total)}
}

// AnalyzeMorse classifies every whitespace separated word of stego as short
// or long after stripping surrounding punctuation.
func AnalyzeMorse(stego string) WordStats {
	words := strings.Fields(stego)
	if len(words) == 0 {
		return WordStats{}
	}

	var s WordStats
	for _, w := range words {
		if utf8.RuneCountInString(strings.Trim(w, wordPunctuation)) <= ShortWordMaxLen {
			s.ShortWords++
		} else {
			s.LongWords++
		}
	}
	s.TotalWords = len(words)
	s.ShortWordsRatio = ratio(s.ShortWords, s.TotalWords)
	s.LongWordsRatio = ratio(s.LongWords, s.TotalWords)
	s.ShortLongRatio = ratio(s.ShortWords, s.LongWords)
	return s
}

// Entropy is the Shannon entropy of text in bits per rune.
func Entropy(text string) float64 {
	counts := make(map[rune]int)
	total := 0
	for _, r := range text {
		counts[r]++
		total++
	}
	if total == 0 {
		return 0
	}

	h := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
