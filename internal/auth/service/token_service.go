// Package service issues and verifies the admin bearer token. Only an Argon2id
// hash of the token is configured on the server.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"sync"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/credvault/internal/errors"
)

// TokenService generates, hashes and verifies admin tokens.
type TokenService interface {
	// GenerateToken returns a random token and its hash.
	GenerateToken() (plainToken string, hashedToken string, err error)

	// HashToken hashes a token with Argon2id in PHC format.
	HashToken(plainToken string) (string, error)

	// VerifyToken reports whether plainToken matches hashedToken.
	VerifyToken(plainToken, hashedToken string) bool
}

type tokenService struct {
	hasher *pwdhash.PasswordHasher

	// verified remembers digests of tokens that already passed Argon2id so
	// repeated requests skip the expensive comparison.
	verified sync.Map
}

// NewTokenService creates a TokenService using the moderate Argon2id policy.
func NewTokenService() (TokenService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}
	return &tokenService{hasher: hasher}, nil
}

func (s *tokenService) GenerateToken() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := base64.URLEncoding.EncodeToString(randomBytes)
	hashedToken, err := s.HashToken(plainToken)
	if err != nil {
		return "", "", err
	}
	return plainToken, hashedToken, nil
}

func (s *tokenService) HashToken(plainToken string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash token")
	}
	return hashed, nil
}

func (s *tokenService) VerifyToken(plainToken, hashedToken string) bool {
	if plainToken == "" || hashedToken == "" {
		return false
	}

	digest := sha256.Sum256([]byte(hashedToken + "\x00" + plainToken))
	if _, ok := s.verified.Load(digest); ok {
		return true
	}

	ok, err := s.hasher.Verify([]byte(plainToken), hashedToken)
	if err != nil || !ok {
		return false
	}
	s.verified.Store(digest, struct{}{})
	return true
}
