package services

import (
	"strings"

	"github.com/conneroisu/stegtext/internal/homoglyph"
	"github.com/conneroisu/stegtext/internal/morse"
	"github.com/conneroisu/stegtext/internal/zerowidth"
)

// Method selects a hiding channel.
type Method string

const (
	MethodZeroWidth Method = zerowidth.Method
	MethodMorse     Method = morse.Method
	MethodHomoglyph Method = homoglyph.Method
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{MethodZeroWidth, MethodMorse, MethodHomoglyph}
}

// ParseMethod accepts a method name, case-insensitively, plus a few aliases.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "zerowidth", "zero-width", "zw":
		return MethodZeroWidth, nil
	case "morse", "lexical":
		return MethodMorse, nil
	case "homoglyph", "unicode":
		return MethodHomoglyph, nil
	}
	return "", unknownMethod(Method(name))
}

// NeedsCover reports whether the method embeds into caller supplied text.
// Morse generates its own.
func (m Method) NeedsCover() bool {
	return m != MethodMorse
}

// Lossy reports whether extraction may differ from the hidden secret.
func (m Method) Lossy() bool {
	return m == MethodMorse
}

func (m Method) String() string {
	return string(m)
}
