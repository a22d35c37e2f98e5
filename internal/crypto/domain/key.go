package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
)

// Key is raw AES-256 key material.
//
// Keys travel as standard base64 text everywhere outside this package. The raw
// bytes should live only for the duration of an operation; call Zero when done.
// Key implements fmt.Stringer and slog.LogValuer so it is never printed.
type Key []byte

// Valid reports whether the key has exactly KeySize bytes.
func (k Key) Valid() bool {
	return len(k) == KeySize
}

// Encode returns the standard base64 representation of the key.
func (k Key) Encode() string {
	return base64.StdEncoding.EncodeToString(k)
}

// Zero overwrites the key material.
func (k Key) Zero() {
	Zero(k)
}

// String hides the key material.
func (k Key) String() string {
	return "[REDACTED]"
}

// LogValue hides the key material from structured logs.
func (k Key) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}

// DecodeKey decodes standard base64 text into a Key.
// Returns ErrInvalidKeyFormat unless the text decodes to exactly 32 bytes.
func DecodeKey(text string) (Key, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", ErrInvalidKeyFormat)
	}
	if len(raw) != KeySize {
		Zero(raw)
		return nil, fmt.Errorf("%w: must decode to %d bytes, got %d", ErrInvalidKeyFormat, KeySize, len(raw))
	}
	return Key(raw), nil
}

// ValidateKeyFormat reports whether text is standard base64 that decodes to exactly 32 bytes.
func ValidateKeyFormat(text string) bool {
	key, err := DecodeKey(text)
	if err != nil {
		return false
	}
	key.Zero()
	return true
}

// GenerateKey returns 32 bytes from crypto/rand encoded as standard base64.
func GenerateKey() (string, error) {
	key := make(Key, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	defer key.Zero()

	return key.Encode(), nil
}

// Zero overwrites a byte slice holding sensitive data.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
