package commands

import (
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
)

// RunGenerateKey prints a fresh random key. The key is not stored anywhere.
func RunGenerateKey(w io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	key, err := cryptoDomain.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	if format == "json" {
		return writeJSON(w, map[string]string{"key": key})
	}

	_, err = fmt.Fprintln(w, key)
	return err
}
