// Package domain defines vault records, the set of fields that hold secrets, and
// the report produced by key rotation.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Encryptable column names. Any of them may be configured as sensitive.
const (
	FieldAccount       = "account"
	FieldPassword      = "password"
	FieldTOTPToken     = "totp_token"
	FieldRecoveryCodes = "recovery_codes"
	FieldNote          = "note"
)

// EncryptableFields lists every column that can carry an envelope, in storage order.
var EncryptableFields = []string{
	FieldAccount,
	FieldPassword,
	FieldTOTPToken,
	FieldRecoveryCodes,
	FieldNote,
}

// DefaultSensitiveFields is used when no field configuration is supplied.
var DefaultSensitiveFields = []string{
	FieldAccount,
	FieldPassword,
	FieldTOTPToken,
	FieldNote,
}

// Record is one vault entry. Sensitive fields hold envelopes at rest and
// plaintext once returned by the record use case.
type Record struct {
	ID            uuid.UUID
	Title         string
	URL           string
	Account       string
	Password      string
	TOTPToken     string
	RecoveryCodes string
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Field returns the value of an encryptable field.
func (r *Record) Field(name string) (string, bool) {
	switch name {
	case FieldAccount:
		return r.Account, true
	case FieldPassword:
		return r.Password, true
	case FieldTOTPToken:
		return r.TOTPToken, true
	case FieldRecoveryCodes:
		return r.RecoveryCodes, true
	case FieldNote:
		return r.Note, true
	}
	return "", false
}

// SetField assigns an encryptable field. It returns false for unknown names.
func (r *Record) SetField(name, value string) bool {
	switch name {
	case FieldAccount:
		r.Account = value
	case FieldPassword:
		r.Password = value
	case FieldTOTPToken:
		r.TOTPToken = value
	case FieldRecoveryCodes:
		r.RecoveryCodes = value
	case FieldNote:
		r.Note = value
	default:
		return false
	}
	return true
}

// RecordFields is the storage port's view of a record: its id and the stored
// values of the requested fields.
type RecordFields struct {
	ID     uuid.UUID
	Values map[string]string
}
