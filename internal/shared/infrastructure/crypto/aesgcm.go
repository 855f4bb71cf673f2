// Package crypto seals small secrets, such as stored sessions, with AES-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// KeySize is the key length in bytes (AES-256).
const KeySize = 32

var (
	ErrEmptyKey   = errors.New("encryption key is empty")
	ErrKeySize    = fmt.Errorf("encryption key must be %d bytes", KeySize)
	ErrShortInput = errors.New("ciphertext too short")
)

// Encrypter encrypts and decrypts data.
type Encrypter interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AESEncrypter uses AES-GCM. Each ciphertext carries its own random nonce
// as a prefix.
type AESEncrypter struct {
	aead cipher.AEAD
}

var _ Encrypter = (*AESEncrypter)(nil)

// NewAESGCMFromBase64Key creates an AESEncrypter from a base64 key of
// KeySize bytes, the form ENCRYPTION_KEY is given in.
func NewAESGCMFromBase64Key(encodedKey string) (*AESEncrypter, error) {
	if encodedKey == "" {
		return nil, ErrEmptyKey
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not base64: %w", err)
	}
	return NewAESGCM(key)
}

// NewAESGCM creates an AESEncrypter from a raw key.
func NewAESGCM(key []byte) (*AESEncrypter, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESEncrypter{aead: aead}, nil
}

// Encrypt returns nonce || ciphertext.
func (e *AESEncrypter) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens the output of Encrypt.
func (e *AESEncrypter) Decrypt(ciphertext []byte) ([]byte, error) {
	n := e.aead.NonceSize()
	if len(ciphertext) < n+e.aead.Overhead() {
		return nil, ErrShortInput
	}
	return e.aead.Open(nil, ciphertext[:n], ciphertext[n:], nil)
}
