package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// RunKeyStatus reports whether a valid key is configured and which source
// supplies it. The key itself is never printed.
func RunKeyStatus(
	ctx context.Context,
	recordUseCase vaultUseCase.RecordUseCase,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	status, err := recordUseCase.KeyStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read key status: %w", err)
	}

	logger.Debug("key status",
		slog.Bool("configured", status.Configured),
		slog.String("source", status.Source.String()),
	)

	if format == "json" {
		return writeJSON(w, status)
	}

	_, err = fmt.Fprintf(w, "Configured: %t\nSource: %s\n", status.Configured, status.Source)
	return err
}
