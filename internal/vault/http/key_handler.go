// Package http exposes key administration and record operations over gin.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	"github.com/allisson/credvault/internal/httputil"
	customValidation "github.com/allisson/credvault/internal/validation"
	"github.com/allisson/credvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// KeyHandler serves the /v1/admin/keys endpoints.
type KeyHandler struct {
	rotationUseCase vaultUseCase.RotationUseCase
	recordUseCase   vaultUseCase.RecordUseCase
	generateKey     func() (string, error)
	logger          *slog.Logger
}

// NewKeyHandler creates a KeyHandler.
func NewKeyHandler(
	rotationUseCase vaultUseCase.RotationUseCase,
	recordUseCase vaultUseCase.RecordUseCase,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		rotationUseCase: rotationUseCase,
		recordUseCase:   recordUseCase,
		generateKey:     cryptoDomain.GenerateKey,
		logger:          logger,
	}
}

// StatusHandler reports whether a key is configured and its source.
// GET /v1/admin/keys/status
func (h *KeyHandler) StatusHandler(c *gin.Context) {
	status, err := h.recordUseCase.KeyStatus(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapKeyStatusToResponse(status))
}

// GenerateHandler returns a new random key without storing it.
// POST /v1/admin/keys/generate
func (h *KeyHandler) GenerateHandler(c *gin.Context) {
	key, err := h.generateKey()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.GenerateKeyResponse{Key: key})
}

// RotateHandler re-encrypts the vault. A completed run answers 200 even when
// individual records failed; the body's success flag and errors tell the caller.
// POST /v1/admin/keys/rotate
func (h *KeyHandler) RotateHandler(c *gin.Context) {
	var req dto.RotateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// A client disconnect must not stop a sweep that is already rewriting records.
	result := h.rotationUseCase.RotateKey(context.WithoutCancel(c.Request.Context()), req.OldKey, req.NewKey)
	if !result.Success {
		h.logger.Warn("key rotation reported errors",
			slog.Int("errors", len(result.Errors)),
			slog.Int("updated_count", result.UpdatedCount),
		)
	}
	c.JSON(http.StatusOK, result)
}
