package service

import (
	"encoding/base64"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
)

// envelopeCodec implements EnvelopeCodec on top of an AEAD built per key.
type envelopeCodec struct {
	observer  Observer
	newCipher func(key []byte) (AEAD, error)
}

func newAESGCMAEAD(key []byte) (AEAD, error) {
	return NewAESGCM(key)
}

// NewEnvelopeCodec creates an EnvelopeCodec that reports encrypt/decrypt events
// to observer. A nil observer disables notifications.
func NewEnvelopeCodec(observer Observer) EnvelopeCodec {
	if observer == nil {
		observer = NoOpObserver{}
	}
	return &envelopeCodec{observer: observer, newCipher: newAESGCMAEAD}
}

// Encrypt fails open: with no usable key the plaintext is returned unchanged so a
// vault without a configured key stays readable.
func (e *envelopeCodec) Encrypt(field, plaintext string, key cryptoDomain.Key) string {
	if plaintext == "" || !key.Valid() {
		return plaintext
	}

	e.observer.BeforeEncrypt(field, plaintext)

	envelope, err := e.EncryptWithKey(plaintext, key)
	if err != nil {
		return plaintext
	}
	return envelope
}

// Decrypt never fails. Anything that is not an envelope sealed under key comes back
// unchanged, which keeps legacy plaintext readable.
func (e *envelopeCodec) Decrypt(
	field, envelope string,
	key cryptoDomain.Key,
) cryptoDomain.DecryptResult {
	if envelope == "" || !key.Valid() {
		return cryptoDomain.PassThrough(envelope)
	}

	plaintext, err := e.DecryptWithKey(envelope, key)
	if err != nil {
		return cryptoDomain.PassThrough(envelope)
	}

	e.observer.AfterDecrypt(field, plaintext)
	return cryptoDomain.DecryptedValue(plaintext)
}

// EncryptWithKey seals plaintext under key and encodes it with standard base64.
func (e *envelopeCodec) EncryptWithKey(plaintext string, key cryptoDomain.Key) (string, error) {
	if !key.Valid() {
		return "", cryptoDomain.ErrInvalidKeyFormat
	}
	if plaintext == "" {
		return "", nil
	}

	aead, err := e.newCipher(key)
	if err != nil {
		return "", err
	}

	raw := []byte(plaintext)
	defer cryptoDomain.Zero(raw)

	sealed, err := aead.Seal(raw)
	if err != nil {
		return "", cryptoDomain.ErrEncryptionFailed
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptWithKey decodes and opens an envelope sealed under key.
func (e *envelopeCodec) DecryptWithKey(envelope string, key cryptoDomain.Key) (string, error) {
	if !key.Valid() {
		return "", cryptoDomain.ErrInvalidKeyFormat
	}
	if envelope == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil || len(raw) < cryptoDomain.MinEnvelopeSize {
		return "", cryptoDomain.ErrMalformedEnvelope
	}

	aead, err := e.newCipher(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(raw)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}
