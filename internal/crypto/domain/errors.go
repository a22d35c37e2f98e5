package domain

import (
	"github.com/allisson/credvault/internal/errors"
)

// Cryptographic error definitions.
//
// The ordinary codec path never returns these; it degrades to pass-through.
// They surface from the explicit-key path used by key rotation and from the
// key resolver.
var (
	// ErrInvalidKeyFormat indicates a key that does not decode to exactly 32 bytes.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidKeyFormat = errors.Wrap(errors.ErrInvalidInput, "invalid key format")

	// ErrMalformedEnvelope indicates a value that is not valid base64 or is shorter
	// than MinEnvelopeSize once decoded.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrDecryptionFailed indicates that GCM authentication failed: wrong key,
	// tampered ciphertext or tag, or corrupted data. The cause is not disclosed.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrEncryptionFailed indicates the cipher could not seal the plaintext.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrNoKeyConfigured indicates that no key source yields a value.
	//
	// HTTP Status: 503 Service Unavailable
	ErrNoKeyConfigured = errors.Wrap(errors.ErrUnavailable, "no encryption key configured")

	// ErrSettingNotFound indicates that no settings row exists under the requested name.
	//
	// HTTP Status: 404 Not Found
	ErrSettingNotFound = errors.Wrap(errors.ErrNotFound, "setting not found")
)
