package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM and produces the
// envelope byte layout IV || Tag || Ciphertext.
//
// Go's cipher.AEAD appends the tag to the ciphertext; Seal and Open reorder the
// tag so stored envelopes keep the tag ahead of the ciphertext.
//
// Security properties:
//   - 256-bit key
//   - 12-byte IV, freshly generated from crypto/rand on every Seal
//   - 16-byte authentication tag
//   - no additional authenticated data
//
// The cipher is stateless after construction and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

var _ AEAD = (*AESGCMCipher)(nil)

// NewAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeyFormat
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns IV || Tag || Ciphertext.
func (a *AESGCMCipher) Seal(plaintext []byte) ([]byte, error) {
	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := a.aead.Seal(nil, iv, plaintext, nil)
	ctLen := len(sealed) - cryptoDomain.TagSize

	envelope := make([]byte, 0, cryptoDomain.IVSize+len(sealed))
	envelope = append(envelope, iv...)
	envelope = append(envelope, sealed[ctLen:]...)
	envelope = append(envelope, sealed[:ctLen]...)
	return envelope, nil
}

// Open verifies and decrypts an IV || Tag || Ciphertext envelope.
// Returns ErrMalformedEnvelope when the input is too short and ErrDecryptionFailed
// when authentication fails.
func (a *AESGCMCipher) Open(envelope []byte) ([]byte, error) {
	if len(envelope) < cryptoDomain.MinEnvelopeSize {
		return nil, cryptoDomain.ErrMalformedEnvelope
	}

	iv := envelope[:cryptoDomain.IVSize]
	tag := envelope[cryptoDomain.IVSize : cryptoDomain.IVSize+cryptoDomain.TagSize]
	ciphertext := envelope[cryptoDomain.IVSize+cryptoDomain.TagSize:]

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
