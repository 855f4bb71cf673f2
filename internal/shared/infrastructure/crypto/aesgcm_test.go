package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewAESGCMFromBase64Key(t *testing.T) {
	enc, err := NewAESGCMFromBase64Key(base64.StdEncoding.EncodeToString(testKey()))
	require.NoError(t, err)
	assert.NotNil(t, enc)

	_, err = NewAESGCMFromBase64Key("")
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = NewAESGCMFromBase64Key("not-valid-base64!!!")
	assert.ErrorContains(t, err, "not base64")

	_, err = NewAESGCMFromBase64Key(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestAESEncrypter_RoundTrip(t *testing.T) {
	enc, err := NewAESGCM(testKey())
	require.NoError(t, err)

	session := []byte(`{"user_id":"00000000-0000-0000-0000-000000000001","token":{"access_token":"a"}}`)
	first, err := enc.Encrypt(session)
	require.NoError(t, err)
	second, err := enc.Encrypt(session)
	require.NoError(t, err)

	assert.False(t, bytes.Contains(first, []byte("access_token")))
	assert.NotEqual(t, first, second, "nonces must differ")

	got, err := enc.Decrypt(first)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestAESEncrypter_Decrypt(t *testing.T) {
	enc, err := NewAESGCM(testKey())
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("tiny"))
	assert.ErrorIs(t, err, ErrShortInput)

	sealed, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff
	_, err = enc.Decrypt(sealed)
	assert.Error(t, err, "tampered ciphertext must not open")

	otherKey := testKey()
	otherKey[0] = 0xff
	other, err := NewAESGCM(otherKey)
	require.NoError(t, err)
	sealed, err = enc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	_, err = other.Decrypt(sealed)
	assert.Error(t, err)
}
