// Package dto defines the JSON request and response bodies of the vault API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/credvault/internal/validation"
	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// CreateRecordRequest carries plaintext values for a new record.
type CreateRecordRequest struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Account       string `json:"account"`
	Password      string `json:"password"`
	TOTPToken     string `json:"totp_token"`
	RecoveryCodes string `json:"recovery_codes"`
	Note          string `json:"note"`
}

// Validate checks the request fields.
func (r *CreateRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.URL, validation.Length(0, 2048), customValidation.HTTPURL),
		validation.Field(&r.Account, validation.Length(0, 1024)),
		validation.Field(&r.Password, validation.Length(0, 4096)),
		validation.Field(&r.TOTPToken, validation.Length(0, 1024)),
		validation.Field(&r.RecoveryCodes, validation.Length(0, 8192)),
		validation.Field(&r.Note, validation.Length(0, 65535)),
	)
}

// ToInput converts the request into use case input.
func (r *CreateRecordRequest) ToInput() vaultUseCase.CreateRecordInput {
	return vaultUseCase.CreateRecordInput{
		Title:         r.Title,
		URL:           r.URL,
		Account:       r.Account,
		Password:      r.Password,
		TOTPToken:     r.TOTPToken,
		RecoveryCodes: r.RecoveryCodes,
		Note:          r.Note,
	}
}

// RotateKeyRequest names the current and the replacement key, both base64.
type RotateKeyRequest struct {
	OldKey string `json:"old_key"`
	NewKey string `json:"new_key"`
}

// Validate checks that both keys decode to 32 bytes.
func (r *RotateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldKey, validation.Required, customValidation.EncryptionKey),
		validation.Field(&r.NewKey, validation.Required, customValidation.EncryptionKey),
	)
}
