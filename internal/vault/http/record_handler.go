package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credvault/internal/httputil"
	customValidation "github.com/allisson/credvault/internal/validation"
	"github.com/allisson/credvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// RecordHandler serves the /v1/records endpoints.
type RecordHandler struct {
	recordUseCase vaultUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a RecordHandler.
func NewRecordHandler(recordUseCase vaultUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{recordUseCase: recordUseCase, logger: logger}
}

// CreateHandler stores a new record.
// POST /v1/records
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.recordUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordToResponse(record))
}

// GetHandler returns one decrypted record.
// GET /v1/records/:id
func (h *RecordHandler) GetHandler(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.Get(c.Request.Context(), recordID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// ListHandler returns a page of decrypted records.
// GET /v1/records?offset=0&limit=50
func (h *RecordHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.recordUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapRecordsToListResponse(records))
}

// DeleteHandler removes a record.
// DELETE /v1/records/:id
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.recordUseCase.Delete(c.Request.Context(), recordID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecordHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid record id: must be a UUID"), h.logger)
		return uuid.Nil, false
	}
	return recordID, true
}
