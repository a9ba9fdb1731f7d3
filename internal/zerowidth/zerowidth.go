// Package zerowidth hides a payload as a run of invisible characters placed
// after the first character of a cover text.
//
// The run is framed by two delimiters, so extraction needs nothing but the
// stego text. Characters are inserted rather than substituted, which means
// any payload fits in any non-empty cover.
package zerowidth

import (
	"strings"
	"unicode/utf8"

	"github.com/conneroisu/stegtext/internal/bitstream"
	"github.com/conneroisu/stegtext/internal/errors"
)

// Invisible code points used by the channel.
const (
	Mark0 = '\u200b' // zero width space, bit 0
	Mark1 = '\u200d' // zero width joiner, bit 1
	Delim = '\u200c' // zero width non-joiner, frames the bit run
)

// Method is the name this codec is registered under.
const Method = "zerowidth"

// Codec implements the invisible-channel method. The zero value is ready to use.
type Codec struct{}

// New returns a Codec.
func New() *Codec {
	return &Codec{}
}

// Hide embeds payload after the first rune of cover.
func (c *Codec) Hide(cover string, payload []byte) (string, error) {
	if cover == "" {
		return "", errors.NewInvalidInputError(errors.ErrCodeEmptyCover, "cover text is empty").WithMethod(Method)
	}
	if len(payload) == 0 {
		return "", errors.NewInvalidInputError(errors.ErrCodeEmptyPayload, "secret message is empty").WithMethod(Method)
	}

	bits := bitstream.Pack(payload)
	_, first := utf8.DecodeRuneInString(cover)

	var b strings.Builder
	b.Grow(len(cover) + (len(bits)+2)*utf8.RuneLen(Mark0))
	b.WriteString(cover[:first])
	b.WriteRune(Delim)
	for _, bit := range bits {
		if bit {
			b.WriteRune(Mark1)
		} else {
			b.WriteRune(Mark0)
		}
	}
	b.WriteRune(Delim)
	b.WriteString(cover[first:])

	return b.String(), nil
}

// Extract recovers the payload framed by the first two delimiters. Runes
// inside the frame other than the two marks are ignored.
func (c *Codec) Extract(stego string) ([]byte, error) {
	if stego == "" {
		return nil, errors.NewInvalidInputError(errors.ErrCodeEmptyText, "stego text is empty").WithMethod(Method)
	}

	parts := strings.Split(stego, string(Delim))
	if len(parts) < 3 {
		return nil, errors.NewNoHiddenMessageError("fewer than two delimiters in text").WithMethod(Method)
	}

	hidden := parts[1]
	bits := make([]bool, 0, utf8.RuneCountInString(hidden))
	for _, r := range hidden {
		switch r {
		case Mark0:
			bits = append(bits, false)
		case Mark1:
			bits = append(bits, true)
		}
	}

	return bitstream.Unpack(bits), nil
}

// Strip removes every invisible rune the channel uses, returning the text a
// reader would see.
func Strip(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case Mark0, Mark1, Delim:
			return -1
		}
		return r
	}, text)
}
