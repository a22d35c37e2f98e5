// Package usecase implements the vault business logic: key rotation across every
// stored record and the record operations used by the API.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

// RecordStore is the storage port used by key rotation.
type RecordStore interface {
	// FetchAll returns the id and the requested field values of every record.
	FetchAll(ctx context.Context, fields vaultDomain.FieldSet) ([]*vaultDomain.RecordFields, error)

	// UpdateFields writes all values to one record atomically.
	UpdateFields(ctx context.Context, recordID uuid.UUID, values map[string]string) error
}

// RecordRepository is the full record persistence interface.
type RecordRepository interface {
	RecordStore
	Create(ctx context.Context, record *vaultDomain.Record) error
	Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error)
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error)
	Delete(ctx context.Context, recordID uuid.UUID) error
}

// RotationUseCase re-encrypts the vault under a new key.
type RotationUseCase interface {
	// RotateKey re-encrypts every non-empty sensitive field from oldKey to newKey.
	// Both keys are standard base64. Failures are reported in the result, never
	// returned as errors.
	RotateKey(ctx context.Context, oldKey, newKey string) *vaultDomain.RotationResult
}

// CreateRecordInput carries plaintext values for a new record.
type CreateRecordInput struct {
	Title         string
	URL           string
	Account       string
	Password      string
	TOTPToken     string
	RecoveryCodes string
	Note          string
}

// RecordUseCase stores and reads records, encrypting sensitive fields at rest.
type RecordUseCase interface {
	Create(ctx context.Context, input CreateRecordInput) (*vaultDomain.Record, error)
	Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error)
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error)
	Delete(ctx context.Context, recordID uuid.UUID) error
	KeyStatus(ctx context.Context) (*cryptoDomain.KeyStatus, error)
}
