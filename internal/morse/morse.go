// Package morse hides text as a freshly generated sequence of words whose
// lengths spell out the Morse code of the secret.
//
// A word of at most three letters is a dot, a longer word is a dash, a lone
// comma separates letters and a lone period separates words. Which word is
// picked for a symbol is random; only its length class carries information.
//
// The channel is lossy by contract: the secret is upper-cased and characters
// outside A-Z, 0-9 and space are dropped.
package morse

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/conneroisu/stegtext/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Method is the name this codec is registered under.
const Method = "morse"

// Cover tokens for the two Morse separators.
const (
	LetterGapToken = ","
	WordGapToken   = "."
)

// Codec implements the lexical-parity method over an immutable WordLists.
type Codec struct {
	words *WordLists

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Codec.
type Option func(*Codec)

// WithRand makes word choice use r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(c *Codec) {
		c.rng = r
	}
}

// New returns a Codec drawing from words, or from the defaults when nil.
func New(words *WordLists, opts ...Option) *Codec {
	if words == nil {
		words = DefaultWordLists()
	}
	c := &Codec{words: words}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WordLists returns the vocabulary the codec uses.
func (c *Codec) WordLists() *WordLists {
	return c.words
}

// Normalize upper-cases text the way Hide does before looking up codes.
func Normalize(text string) string {
	return cases.Upper(language.Und).String(text)
}

// Representable returns what Extract will recover for text: the upper-cased
// characters that have a Morse code, in order.
func Representable(text string) string {
	var b strings.Builder
	for _, r := range Normalize(text) {
		if _, ok := codes[r]; ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Hide generates cover words for payload, read as UTF-8 text.
func (c *Codec) Hide(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", errors.NewInvalidInputError(errors.ErrCodeEmptyPayload, "secret message is empty").WithMethod(Method)
	}

	code := Encode(string(payload))
	if code == "" {
		return "", errors.NewInvalidInputError(errors.ErrCodeUnencodable,
			"secret message has no letters, digits or spaces").WithMethod(Method)
	}

	tokens := make([]string, 0, len(code))
	for _, symbol := range code {
		switch symbol {
		case '.':
			tokens = append(tokens, c.pick(c.words.short))
		case '-':
			tokens = append(tokens, c.pick(c.words.long))
		case ' ':
			tokens = append(tokens, LetterGapToken)
		case '/':
			tokens = append(tokens, WordGapToken)
		}
	}

	return strings.Join(tokens, " "), nil
}

// Extract reads the length class of every word back into Morse code and
// decodes it. It never fails; unknown codes are skipped.
func (c *Codec) Extract(stego string) ([]byte, error) {
	spaced := strings.NewReplacer(".", " . ", ",", " , ").Replace(stego)

	var code strings.Builder
	for _, word := range strings.Fields(spaced) {
		switch {
		case word == LetterGapToken:
			code.WriteByte(' ')
		case word == WordGapToken:
			code.WriteString(" " + WordSeparator + " ")
		case wordLen(word) <= ShortWordMaxLen:
			code.WriteByte('.')
		default:
			code.WriteByte('-')
		}
	}

	return []byte(Decode(code.String())), nil
}

func (c *Codec) pick(words []string) string {
	if c.rng == nil {
		return words[rand.IntN(len(words))]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return words[c.rng.IntN(len(words))]
}
