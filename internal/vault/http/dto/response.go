package dto

import (
	"time"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

// RecordResponse is a record with its sensitive fields in plaintext.
type RecordResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url,omitempty"`
	Account       string    `json:"account,omitempty"`
	Password      string    `json:"password,omitempty"`
	TOTPToken     string    `json:"totp_token,omitempty"`
	RecoveryCodes string    `json:"recovery_codes,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MapRecordToResponse converts a domain record.
func MapRecordToResponse(record *vaultDomain.Record) RecordResponse {
	return RecordResponse{
		ID:            record.ID.String(),
		Title:         record.Title,
		URL:           record.URL,
		Account:       record.Account,
		Password:      record.Password,
		TOTPToken:     record.TOTPToken,
		RecoveryCodes: record.RecoveryCodes,
		Note:          record.Note,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

// ListRecordsResponse wraps one page of records.
type ListRecordsResponse struct {
	Data []RecordResponse `json:"data"`
}

// MapRecordsToListResponse converts a page of domain records.
func MapRecordsToListResponse(records []*vaultDomain.Record) ListRecordsResponse {
	data := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapRecordToResponse(record))
	}
	return ListRecordsResponse{Data: data}
}

// KeyStatusResponse explains the key configuration without exposing the key.
type KeyStatusResponse struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
}

// MapKeyStatusToResponse converts a key status.
func MapKeyStatusToResponse(status *cryptoDomain.KeyStatus) KeyStatusResponse {
	return KeyStatusResponse{
		Configured: status.Configured,
		Source:     status.Source.String(),
	}
}

// GenerateKeyResponse carries a freshly generated key. It is never stored.
type GenerateKeyResponse struct {
	Key string `json:"key"`
}
