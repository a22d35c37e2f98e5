// Package service provides the encryption envelope codec, the AES-256-GCM cipher
// behind it, and the resolver that locates the active encryption key.
package service

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
)

// AEAD seals and opens envelope bytes (IV || Tag || Ciphertext).
type AEAD interface {
	// Seal encrypts plaintext under a fresh random IV.
	Seal(plaintext []byte) ([]byte, error)

	// Open authenticates and decrypts envelope bytes.
	Open(envelope []byte) ([]byte, error)
}

// EnvelopeCodec encodes single secret strings into base64 envelopes and back.
//
// Encrypt and Decrypt are the ordinary runtime path: they never fail. Missing or
// invalid keys and undecryptable input degrade to returning the input unchanged.
// EncryptWithKey and DecryptWithKey are the explicit path used by key rotation and
// report every failure.
type EnvelopeCodec interface {
	// Encrypt returns the envelope for plaintext, or plaintext itself when it is
	// empty or key is not a valid 32-byte key. field is passed to the observer.
	Encrypt(field, plaintext string, key cryptoDomain.Key) string

	// Decrypt recovers plaintext from envelope, or returns envelope unchanged.
	Decrypt(field, envelope string, key cryptoDomain.Key) cryptoDomain.DecryptResult

	// EncryptWithKey encrypts plaintext and fails on an invalid key.
	EncryptWithKey(plaintext string, key cryptoDomain.Key) (string, error)

	// DecryptWithKey decrypts envelope and fails on an invalid key, malformed
	// envelope or authentication failure.
	DecryptWithKey(envelope string, key cryptoDomain.Key) (string, error)
}

// Observer receives audit notifications. Implementations must not retain plaintext
// and must not block.
type Observer interface {
	BeforeEncrypt(field, plaintext string)
	AfterDecrypt(field, plaintext string)
	KeyRotated(at time.Time)
}

// KeyResolver locates the active encryption key across the configured sources.
type KeyResolver interface {
	// GetKey returns the raw key from the highest priority source holding a
	// value. The key is empty when no source holds one or the value is not base64.
	GetKey(ctx context.Context) (cryptoDomain.Key, error)

	// GetKeySource returns which source supplies the key without exposing it.
	GetKeySource(ctx context.Context) (cryptoDomain.KeySource, error)

	// IsConfigured reports whether GetKey yields exactly 32 bytes.
	IsConfigured(ctx context.Context) bool

	// PersistKey stores an encoded key in the database source.
	PersistKey(ctx context.Context, encodedKey string) error
}

// KeyLookup reads a named key value from one configuration source.
// An absent value is reported as an empty string, not an error.
type KeyLookup interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// SettingRepository is the persisted key-value settings store backing the
// database key source.
type SettingRepository interface {
	// Get returns the value stored under name or ErrSettingNotFound.
	Get(ctx context.Context, name string) (string, error)

	// Set creates or replaces the value stored under name.
	Set(ctx context.Context, name, value string) error
}
