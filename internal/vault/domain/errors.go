package domain

import (
	"fmt"

	"github.com/allisson/credvault/internal/errors"
)

// Vault error definitions.
var (
	// ErrRecordNotFound indicates the record does not exist.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrUnknownField indicates a field name outside the encryptable set.
	ErrUnknownField = errors.Wrap(errors.ErrInvalidInput, "unknown field")
)

// WrapUnknownField names the offending field while keeping ErrUnknownField in the chain.
func WrapUnknownField(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, name)
}
