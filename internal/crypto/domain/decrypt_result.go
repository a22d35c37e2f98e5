package domain

// DecryptOutcome tells how an ordinary decrypt produced its value.
type DecryptOutcome int

const (
	// OutcomePassThrough means the input was returned unchanged. The input was
	// empty, no key was available, or the value was not a decryptable envelope.
	// Legacy plaintext and tampered ciphertext are deliberately indistinguishable here.
	OutcomePassThrough DecryptOutcome = iota
	// OutcomeDecrypted means the value is plaintext recovered from a valid envelope.
	OutcomeDecrypted
)

// DecryptResult is the value returned by the ordinary decrypt path. It always
// carries a usable string: either the recovered plaintext or the original input.
type DecryptResult struct {
	Value   string
	Outcome DecryptOutcome
}

// Decrypted reports whether Value was recovered from an envelope.
func (r DecryptResult) Decrypted() bool {
	return r.Outcome == OutcomeDecrypted
}

// PassThrough builds a result carrying the original input.
func PassThrough(value string) DecryptResult {
	return DecryptResult{Value: value, Outcome: OutcomePassThrough}
}

// DecryptedValue builds a result carrying recovered plaintext.
func DecryptedValue(plaintext string) DecryptResult {
	return DecryptResult{Value: plaintext, Outcome: OutcomeDecrypted}
}
