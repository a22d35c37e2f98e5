package commands

import (
	"fmt"
	"io"
	"log/slog"

	authService "github.com/allisson/credvault/internal/auth/service"
)

// RunHashAdminToken prints the Argon2id hash to put in ADMIN_TOKEN_HASH. When
// token is empty a random one is generated and printed once alongside its hash.
func RunHashAdminToken(
	tokenService authService.TokenService,
	logger *slog.Logger,
	w io.Writer,
	token, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var (
		hash string
		err  error
	)
	generated := token == ""
	if generated {
		token, hash, err = tokenService.GenerateToken()
	} else {
		hash, err = tokenService.HashToken(token)
	}
	if err != nil {
		return fmt.Errorf("failed to hash admin token: %w", err)
	}

	logger.Info("admin token hashed", slog.Bool("generated", generated))

	if format == "json" {
		output := map[string]string{"hash": hash}
		if generated {
			output["token"] = token
		}
		return writeJSON(w, output)
	}

	if generated {
		if _, err := fmt.Fprintf(w, "Token: %s\n", token); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "ADMIN_TOKEN_HASH=%s\n", hash)
	return err
}
