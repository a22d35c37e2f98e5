// Package validation provides jellydator/validation rules shared by request DTOs.
package validation

import (
	"encoding/base64"
	"net/url"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	apperrors "github.com/allisson/credvault/internal/errors"
)

// WrapValidationError converts a validation error into ErrInvalidInput so the
// HTTP layer maps it to 422.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Base64 checks that a string is standard base64. Empty strings pass; combine
// with validation.Required when the value is mandatory.
var Base64 = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// EncryptionKey checks that a string is the base64 encoding of exactly 32 bytes.
var EncryptionKey = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_encryption_key_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if !cryptoDomain.ValidateKeyFormat(s) {
		return validation.NewError(
			"validation_encryption_key",
			"must be base64 encoding of 32 bytes",
		)
	}
	return nil
})

// HTTPURL checks that a string is an absolute http or https URL.
var HTTPURL = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_url_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validation.NewError("validation_url", "must be an http or https URL")
	}
	return nil
})
