package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// RunRotateKey re-encrypts every record from oldKey to newKey and prints the
// report. It returns an error when the report is not successful so the process
// exits non-zero; the report itself is printed either way.
//
// Requirements: database migrated and reachable; no writers using the old key
// while the rotation runs.
func RunRotateKey(
	ctx context.Context,
	rotationUseCase vaultUseCase.RotationUseCase,
	logger *slog.Logger,
	w io.Writer,
	oldKey, newKey, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("rotating encryption key")

	result := rotationUseCase.RotateKey(ctx, oldKey, newKey)

	if format == "json" {
		if err := writeJSON(w, result); err != nil {
			return err
		}
	} else if err := outputRotationText(w, result); err != nil {
		return err
	}

	logger.Info("key rotation finished",
		slog.Bool("success", result.Success),
		slog.Int("updated_count", result.UpdatedCount),
		slog.Int("error_count", len(result.Errors)),
	)

	if !result.Success {
		return fmt.Errorf("key rotation failed: %s", result.Message)
	}
	return nil
}

func outputRotationText(w io.Writer, result *vaultDomain.RotationResult) error {
	if _, err := fmt.Fprintln(w, result.Message); err != nil {
		return err
	}
	for _, rotationErr := range result.Errors {
		if _, err := fmt.Fprintf(w, "  - %s\n", rotationErr); err != nil {
			return err
		}
	}
	return nil
}
