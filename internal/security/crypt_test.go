package security

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyB64() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, KeySize))
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealerFromBase64(testKeyB64())
	require.NoError(t, err)

	ct, err := s.Seal("46 Everdean St")
	require.NoError(t, err)
	assert.NotContains(t, ct, "Everdean")

	pt, err := s.Open(ct)
	require.NoError(t, err)
	assert.Equal(t, "46 Everdean St", pt)

	again, err := s.Seal("46 Everdean St")
	require.NoError(t, err)
	assert.NotEqual(t, ct, again, "nonce must differ per call")
}

func TestLoadKeyFromBase64(t *testing.T) {
	_, err := LoadKeyFromBase64("not base64!")
	assert.Error(t, err)

	_, err = LoadKeyFromBase64(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorContains(t, err, "32 bytes")
}

func TestSealer_OpenRejectsTampering(t *testing.T) {
	s, err := NewSealerFromBase64(testKeyB64())
	require.NoError(t, err)

	_, err = s.Open("AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	ct, err := s.Seal("x")
	require.NoError(t, err)
	raw, _ := base64.RawURLEncoding.DecodeString(ct)
	raw[len(raw)-1] ^= 0xff
	_, err = s.Open(base64.RawURLEncoding.EncodeToString(raw))
	assert.Error(t, err)
}
