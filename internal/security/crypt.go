// Package security encrypts caller data at rest.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const KeySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// LoadKeyFromBase64 decodes an AES-256 key.
func LoadKeyFromBase64(b64 string) ([]byte, error) {
	k, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(k) != KeySize {
		return nil, fmt.Errorf("key must decode to %d bytes, got %d", KeySize, len(k))
	}
	return k, nil
}

// Sealer encrypts short strings with AES-GCM. The output is
// base64url(nonce|ciphertext).
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: gcm}, nil
}

// NewSealerFromBase64 is LoadKeyFromBase64 followed by NewSealer.
func NewSealerFromBase64(b64 string) (*Sealer, error) {
	k, err := LoadKeyFromBase64(b64)
	if err != nil {
		return nil, err
	}
	return NewSealer(k)
}

func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(b64url string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(b64url)
	if err != nil {
		return "", err
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrCiphertextTooShort
	}
	pt, err := s.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
