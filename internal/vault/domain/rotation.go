package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// FieldAll marks a rotation error that concerns the whole record.
const FieldAll = "*"

// Rotation error messages reported per field or record.
const (
	MsgDecryptFailed        = "decrypt failed"
	MsgReencryptFailed      = "re-encrypt failed"
	MsgDatabaseUpdateFailed = "database update failed"
)

// RotationError identifies one field or record that was not rotated. RecordID
// is uuid.Nil for failures that concern the whole run; those are encoded
// without record_id and field.
type RotationError struct {
	RecordID uuid.UUID `json:"record_id"`
	Field    string    `json:"field"`
	Message  string    `json:"message"`
}

// NewRunError builds an error that is not tied to a record.
func NewRunError(message string) RotationError {
	return RotationError{Message: message}
}

// IsRunError reports whether e concerns the whole run rather than one record.
func (e RotationError) IsRunError() bool {
	return e.RecordID == uuid.Nil
}

func (e RotationError) MarshalJSON() ([]byte, error) {
	type rotationErrorJSON struct {
		RecordID *uuid.UUID `json:"record_id,omitempty"`
		Field    string     `json:"field,omitempty"`
		Message  string     `json:"message"`
	}
	out := rotationErrorJSON{Field: e.Field, Message: e.Message}
	if !e.IsRunError() {
		id := e.RecordID
		out.RecordID = &id
	}
	return json.Marshal(out)
}

func (e RotationError) String() string {
	if e.IsRunError() {
		return e.Message
	}
	return fmt.Sprintf("record %s field %s: %s", e.RecordID, e.Field, e.Message)
}

// RotationResult is the report returned by a key rotation run.
type RotationResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	UpdatedCount int             `json:"updated_count"`
	Errors       []RotationError `json:"errors"`
}

// NewRotationFailure builds the result of a run that stopped before touching any record.
func NewRotationFailure(message string) *RotationResult {
	return &RotationResult{
		Success: false,
		Message: message,
		Errors:  []RotationError{NewRunError(message)},
	}
}

// Finalize sets Success and Message from the collected errors.
func (r *RotationResult) Finalize() {
	if r.Errors == nil {
		r.Errors = []RotationError{}
	}
	r.Success = len(r.Errors) == 0
	if r.Success {
		r.Message = fmt.Sprintf("rotated %d record(s)", r.UpdatedCount)
		return
	}
	r.Message = fmt.Sprintf(
		"rotation completed with %d error(s), %d record(s) updated",
		len(r.Errors),
		r.UpdatedCount,
	)
}
