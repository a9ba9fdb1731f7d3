// Package wordlist loads the vocabularies of the morse codec from disk and
// keeps the active set swappable at runtime.
package wordlist

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/morse"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads one word per line. Blank lines are skipped; duplicates and
// invalid UTF-8 are rejected.
func Parse(data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("word list must be valid UTF-8")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var words []string
	seen := make(map[string]int)
	for i, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(line)
		if w == "" {
			continue
		}
		if first, ok := seen[w]; ok {
			return nil, fmt.Errorf("duplicate word %q on lines %d and %d", w, first, i+1)
		}
		seen[w] = i + 1
		words = append(words, w)
	}
	return words, nil
}

// LoadFile reads and parses the word list at path.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileError("read", path, err)
	}

	words, err := Parse(data)
	if err != nil {
		return nil, errors.NewInvalidInputError(errors.ErrCodeWordListInvalid, err.Error()).WithContext("path", path)
	}
	return words, nil
}

// Load builds word lists from the two files. An empty path, or a file with
// no words, falls back to the built-in list for that class. The result is
// validated against the length classes the codec reads back.
func Load(shortPath, longPath string) (*morse.WordLists, error) {
	var short, long []string
	var err error

	if shortPath != "" {
		if short, err = LoadFile(shortPath); err != nil {
			return nil, err
		}
	}
	if longPath != "" {
		if long, err = LoadFile(longPath); err != nil {
			return nil, err
		}
	}

	words := morse.NewWordLists(short, long)
	if err := words.Validate(); err != nil {
		return nil, errors.NewInvalidInputError(errors.ErrCodeWordListInvalid, err.Error())
	}
	return words, nil
}

// Format renders words one per line in the layout Parse reads.
func Format(words []string) []byte {
	var buf bytes.Buffer
	for _, w := range words {
		buf.WriteString(w)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFile stores words at path, replacing any existing file.
func WriteFile(path string, words []string) error {
	if err := os.WriteFile(path, Format(words), 0o644); err != nil {
		return errors.FileError("write", path, err)
	}
	return nil
}
