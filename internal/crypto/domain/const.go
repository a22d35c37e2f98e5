package domain

// Envelope layout constants.
//
// An envelope is base64(IV || Tag || Ciphertext) using the standard alphabet with
// padding. There is no version byte and no associated data. These values are part
// of the stored data format and must not change.
const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// IVSize is the GCM nonce length in bytes (96 bits).
	IVSize = 12

	// TagSize is the GCM authentication tag length in bytes (128 bits).
	TagSize = 16

	// MinEnvelopeSize is the smallest decoded envelope that can carry at least
	// one byte of ciphertext. Anything shorter is treated as legacy plaintext.
	MinEnvelopeSize = IVSize + TagSize + 1
)
