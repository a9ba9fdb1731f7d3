package zerowidth

import (
	"strings"
	"testing"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHideLayout(t *testing.T) {
	c := New()

	stego, err := c.Hide("cat", []byte("H"))
	require.NoError(t, err)

	// H = 01001000
	want := "c" + string(Delim) +
		string([]rune{Mark0, Mark1, Mark0, Mark0, Mark1, Mark0, Mark0, Mark0}) +
		string(Delim) + "at"
	assert.Equal(t, want, stego)
}

func TestHideExtractScenario(t *testing.T) {
	c := New()

	stego, err := c.Hide("cat", []byte("HI"))
	require.NoError(t, err)

	assert.Equal(t, "cat", Strip(stego))
	assert.Equal(t, 3+2+16, len([]rune(stego)))

	got, err := c.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, []byte("HI"), got)
}

func TestSingleRuneCover(t *testing.T) {
	c := New()

	stego, err := c.Hide("é", []byte("ok"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stego, "é"+string(Delim)))
	assert.True(t, strings.HasSuffix(stego, string(Delim)))

	got, err := c.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)
}

func TestCoverPreserved(t *testing.T) {
	c := New()
	cover := "Dear team,\nthe report is attached. Regards"

	stego, err := c.Hide(cover, []byte("meet at noon"))
	require.NoError(t, err)
	assert.Equal(t, cover, Strip(stego))
}

func TestLongPayloadAlwaysFits(t *testing.T) {
	c := New()
	payload := []byte(strings.Repeat("capacity is unbounded ", 200))

	stego, err := c.Hide("x", payload)
	require.NoError(t, err)

	got, err := c.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestHideRejectsEmptyInput(t *testing.T) {
	c := New()

	_, err := c.Hide("", []byte("x"))
	assert.True(t, errors.IsInvalidInput(err))

	_, err = c.Hide("cover", nil)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestExtractErrors(t *testing.T) {
	c := New()

	_, err := c.Extract("")
	assert.True(t, errors.IsInvalidInput(err))

	_, err = c.Extract("plain text without any markers")
	assert.True(t, errors.IsNoHiddenMessage(err))

	_, err = c.Extract("one" + string(Delim) + "delimiter only")
	assert.True(t, errors.IsNoHiddenMessage(err))
}

func TestExtractIgnoresForeignRunesAndPartialByte(t *testing.T) {
	c := New()
	bits := []rune{Mark0, Mark1, 'x', Mark0, Mark0, Mark1, Mark0, Mark0, Mark0, Mark1, Mark1}
	stego := "a" + string(Delim) + string(bits) + string(Delim) + "b"

	got, err := c.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, []byte("H"), got)
}

func TestExtractUsesFirstFrameOnly(t *testing.T) {
	c := New()
	first, err := c.Hide("ab", []byte("A"))
	require.NoError(t, err)
	second, err := c.Hide("cd", []byte("B"))
	require.NoError(t, err)

	got, err := c.Extract(first + second)
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), got)
}
