// Package homoglyph hides a payload by swapping selected Latin letters of a
// cover text for identical-looking Greek and Cyrillic letters.
//
// Every letter present in the table carries exactly one bit: the look-alike
// means 1 and the untouched Latin letter means 0. Capacity is therefore the
// number of table letters in the cover.
package homoglyph

import (
	"bytes"
	"strings"

	"github.com/conneroisu/stegtext/internal/bitstream"
	"github.com/conneroisu/stegtext/internal/errors"
)

// Method is the name this codec is registered under.
const Method = "homoglyph"

// Codec implements homoglyph substitution over a Table.
type Codec struct {
	table *Table
}

// New returns a Codec over table, or over the default table when nil.
func New(table *Table) *Codec {
	if table == nil {
		table = DefaultTable()
	}
	return &Codec{table: table}
}

// Table returns the substitution table the codec uses.
func (c *Codec) Table() *Table {
	return c.table
}

// Capacity returns how many bits cover can carry.
func (c *Codec) Capacity(cover string) int {
	n := 0
	for _, r := range cover {
		if c.table.IsCarrier(r) {
			n++
		}
	}
	return n
}

// Hide embeds payload into cover. Letters past the end of the bit stream are
// copied unchanged. A cover with too few carrier letters yields an
// insufficient capacity error.
//
// Unused carriers read back as zero bits, so a payload ending in 0x00 could
// not be told apart from its padding and is rejected.
func (c *Codec) Hide(cover string, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", errors.NewInvalidInputError(errors.ErrCodeEmptyPayload, "secret message is empty").WithMethod(Method)
	}
	if payload[len(payload)-1] == 0x00 {
		return "", errors.NewInvalidInputError(errors.ErrCodeUnencodable, "payload must not end with a NUL byte").WithMethod(Method)
	}

	bits := bitstream.Pack(payload)
	idx := 0

	var b strings.Builder
	b.Grow(len(cover) + len(bits))
	for _, r := range cover {
		if idx < len(bits) {
			if sub, ok := c.table.Substitute(r); ok {
				if bits[idx] {
					r = sub
				}
				idx++
			}
		}
		b.WriteRune(r)
	}

	if idx < len(bits) {
		return "", errors.NewCapacityError(len(bits), idx).WithMethod(Method)
	}

	return b.String(), nil
}

// Extract reads one bit from every carrier letter and look-alike in stego.
// Carrier letters after the payload decode as zero bytes, so trailing 0x00
// bytes are trimmed from the result.
func (c *Codec) Extract(stego string) ([]byte, error) {
	bits := make([]bool, 0, len(stego))
	for _, r := range stego {
		switch {
		case c.table.IsSubstitute(r):
			bits = append(bits, true)
		case c.table.IsCarrier(r):
			bits = append(bits, false)
		}
	}

	return bytes.TrimRight(bitstream.Unpack(bits), "\x00"), nil
}

// Reveal returns stego with every look-alike replaced by its Latin letter.
func (c *Codec) Reveal(stego string) string {
	return strings.Map(func(r rune) rune {
		if o, ok := c.table.Original(r); ok {
			return o
		}
		return r
	}, stego)
}
