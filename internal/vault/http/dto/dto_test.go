package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

func TestCreateRecordRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := CreateRecordRequest{Title: "mail", URL: "https://mail.example.com", Password: "pw"}
		assert.NoError(t, req.Validate())
		assert.Equal(t, "pw", req.ToInput().Password)
	})

	t.Run("missing title", func(t *testing.T) {
		req := CreateRecordRequest{Password: "pw"}
		assert.ErrorContains(t, req.Validate(), "title")
	})

	t.Run("bad url", func(t *testing.T) {
		req := CreateRecordRequest{Title: "mail", URL: "mail.example.com"}
		assert.ErrorContains(t, req.Validate(), "url")
	})

	t.Run("title too long", func(t *testing.T) {
		req := CreateRecordRequest{Title: strings.Repeat("x", 256)}
		assert.Error(t, req.Validate())
	})
}

func TestRotateKeyRequest_Validate(t *testing.T) {
	key, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)

	assert.NoError(t, (&RotateKeyRequest{OldKey: key, NewKey: key}).Validate())
	assert.ErrorContains(t, (&RotateKeyRequest{NewKey: key}).Validate(), "old_key")
	assert.ErrorContains(t, (&RotateKeyRequest{OldKey: key, NewKey: "c2hvcnQ="}).Validate(), "new_key")
}

func TestMapRecordsToListResponse(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()

	response := MapRecordsToListResponse([]*vaultDomain.Record{
		{ID: id, Title: "mail", Account: "alice", CreatedAt: now, UpdatedAt: now},
	})
	require.Len(t, response.Data, 1)
	assert.Equal(t, id.String(), response.Data[0].ID)
	assert.Equal(t, "alice", response.Data[0].Account)

	assert.NotNil(t, MapRecordsToListResponse(nil).Data)

	status := MapKeyStatusToResponse(&cryptoDomain.KeyStatus{Configured: true, Source: cryptoDomain.KeySourceDatabase})
	assert.Equal(t, KeyStatusResponse{Configured: true, Source: "database"}, status)
}
