package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Low iteration count keeps the suite fast; derivation is the same code path.
func testEncryptor() *Encryptor {
	return New(Options{Iterations: 1000})
}

func TestEncryptDecrypt(t *testing.T) {
	e := testEncryptor()

	for _, plain := range []string{"HI", "meet me at noon", "déjà vu 🚀", string(make([]byte, 1024))} {
		ct, err := e.Encrypt(plain, "hunter2")
		require.NoError(t, err)
		assert.NotContains(t, ct, plain)

		_, err = base64.URLEncoding.DecodeString(ct)
		assert.NoError(t, err, "ciphertext must be URL-safe base64")

		got, err := e.Decrypt(ct, "hunter2")
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestEncryptIsRandomised(t *testing.T) {
	e := testEncryptor()
	a, err := e.Encrypt("same", "pw")
	require.NoError(t, err)
	b, err := e.Encrypt("same", "pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptFailures(t *testing.T) {
	e := testEncryptor()
	ct, err := e.Encrypt("secret", "right")
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.URLEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		ciphertext string
		password   string
	}{
		{"wrong password", ct, "wrong"},
		{"tampered", tampered, "right"},
		{"not base64", "%%%", "right"},
		{"too short", base64.URLEncoding.EncodeToString([]byte("short")), "right"},
		{"empty", "", "right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Decrypt(tt.ciphertext, tt.password)
			require.Error(t, err)
			assert.True(t, errors.IsAuthentication(err), "got %v", err)
		})
	}
}

func TestSaltAndIterationsMatter(t *testing.T) {
	ct, err := New(Options{Iterations: 1000, Salt: "one"}).Encrypt("secret", "pw")
	require.NoError(t, err)

	_, err = New(Options{Iterations: 1000, Salt: "two"}).Decrypt(ct, "pw")
	assert.True(t, errors.IsAuthentication(err))

	_, err = New(Options{Iterations: 1001, Salt: "one"}).Decrypt(ct, "pw")
	assert.True(t, errors.IsAuthentication(err))
}

func TestInvalidInput(t *testing.T) {
	e := testEncryptor()

	_, err := e.Encrypt("", "pw")
	assert.True(t, errors.IsInvalidInput(err))

	_, err = e.Encrypt("secret", "")
	assert.True(t, errors.IsInvalidInput(err))

	_, err = e.Decrypt("AAAA", "")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestDefaults(t *testing.T) {
	e := Default()
	assert.Equal(t, DefaultIterations, e.iterations)
	assert.Equal(t, []byte(DefaultSalt), e.salt)
}

func TestSealOpen(t *testing.T) {
	e := testEncryptor()
	sealed, err := e.Seal([]byte{0x00, 0xff, 0x10}, "pw")
	require.NoError(t, err)
	assert.Len(t, sealed, 12+3+16)

	plain, err := e.Open(sealed, "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, plain)
}
