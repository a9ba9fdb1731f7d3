// Package crypto seals secrets with a password before they are hidden.
//
// Keys are derived with PBKDF2-HMAC-SHA256 over a fixed salt and the
// ciphertext is ChaCha20-Poly1305 with a random nonce prefix, so a wrong
// password or a single flipped bit is reported instead of decrypting to
// garbage.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/conneroisu/stegtext/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// Key derivation defaults.
const (
	DefaultIterations = 100000
	DefaultSalt       = "steganography_salt"
	KeySize           = chacha20poly1305.KeySize
)

// Encryptor turns plaintext into an opaque, authenticated text form and back.
type Encryptor struct {
	iterations int
	salt       []byte
}

// Options configures an Encryptor. Zero fields take the defaults.
type Options struct {
	Iterations int
	Salt       string
}

// New returns an Encryptor for opts.
func New(opts Options) *Encryptor {
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Salt == "" {
		opts.Salt = DefaultSalt
	}
	return &Encryptor{iterations: opts.Iterations, salt: []byte(opts.Salt)}
}

// Default returns an Encryptor with the default iterations and salt.
func Default() *Encryptor {
	return New(Options{})
}

// Encrypt seals plaintext and returns it as URL-safe base64.
func (e *Encryptor) Encrypt(plaintext, password string) (string, error) {
	sealed, err := e.Seal([]byte(plaintext), password)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(ciphertext, password string) (string, error) {
	sealed, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.NewAuthenticationError(err)
	}
	plain, err := e.Open(sealed, password)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Seal returns nonce || ciphertext || tag for plaintext.
func (e *Encryptor) Seal(plaintext []byte, password string) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, errors.NewInvalidInputError(errors.ErrCodeEmptyPayload, "nothing to encrypt")
	}
	aead, err := e.aead(password)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.WrapInternal(err, errors.ErrCodeEncryptFailed, "failed to generate nonce")
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts the output of Seal.
func (e *Encryptor) Open(sealed []byte, password string) ([]byte, error) {
	aead, err := e.aead(password)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.NewAuthenticationError(nil).WithContext("length", len(sealed))
	}

	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, errors.NewAuthenticationError(err)
	}
	return plain, nil
}

func (e *Encryptor) aead(password string) (cipher.AEAD, error) {
	if password == "" {
		return nil, errors.NewInvalidInputError(errors.ErrCodeEmptyPassword, "password is empty")
	}
	key := pbkdf2.Key([]byte(password), e.salt, e.iterations, KeySize, sha256.New)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.WrapInternal(err, errors.ErrCodeInternalError, "failed to initialise cipher")
	}
	return aead, nil
}
