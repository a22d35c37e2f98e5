// Package integration runs the vault API end to end against PostgreSQL and MySQL.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/credvault/internal/app"
	"github.com/allisson/credvault/internal/config"
	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	"github.com/allisson/credvault/internal/testutil"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
	"github.com/allisson/credvault/internal/vault/http/dto"
)

const testKeyName = "CREDVAULT_INTEGRATION_KEY"

type integrationTestContext struct {
	container  *app.Container
	db         *sql.DB
	server     *httptest.Server
	adminToken string
	activeKey  string
	dbDriver   string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body any,
	useAuth bool,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if useAuth {
		req.Header.Set("Authorization", "Bearer "+ctx.adminToken)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// openEnvelope decrypts a stored value with the active key and fails the test
// when it is not a valid envelope.
func (ctx *integrationTestContext) openEnvelope(t *testing.T, envelope string) string {
	t.Helper()

	codec, err := ctx.container.EnvelopeCodec()
	require.NoError(t, err)
	key, err := cryptoDomain.DecodeKey(ctx.activeKey)
	require.NoError(t, err)

	plaintext, err := codec.DecryptWithKey(envelope, key)
	require.NoError(t, err, "stored value is not an envelope under the active key")
	return plaintext
}

// setupIntegrationTest builds the full container against the test database with
// the active key stored in vault_settings.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.SetupDB(t, dbDriver)

	// The environment source outranks the database source.
	t.Setenv(testKeyName, "")

	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           0,
		DBDriver:             dbDriver,
		DBConnectionString:   testutil.TestDSN(dbDriver),
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    5 * time.Minute,
		LogLevel:             "error",
		EncryptionKeyName:    testKeyName,
		SensitiveFields:      []string{"account", "password", "totp_token", "note"},
		RotationWorkers:      2,
		RateLimitEnabled:     false,
		CORSEnabled:          false,
		MetricsEnabled:       false,
	}

	container := app.NewContainer(cfg)

	tokenService, err := container.TokenService()
	require.NoError(t, err)
	adminToken, adminHash, err := tokenService.GenerateToken()
	require.NoError(t, err)
	cfg.AdminTokenHash = adminHash

	activeKey, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)
	settings, err := container.SettingRepository()
	require.NoError(t, err)
	require.NoError(t, settings.Set(context.Background(), testKeyName, activeKey))

	httpServer, err := container.HTTPServer(t.Context())
	require.NoError(t, err)
	server := httptest.NewServer(httpServer.GetHandler())

	t.Cleanup(func() {
		server.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Shutdown(shutdownCtx); err != nil {
			t.Logf("Warning: container shutdown failed: %v", err)
		}
	})

	return &integrationTestContext{
		container:  container,
		db:         db,
		server:     server,
		adminToken: adminToken,
		activeKey:  activeKey,
		dbDriver:   dbDriver,
	}
}

func TestIntegration_VaultFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, dbDriver := range []string{"postgres", "mysql"} {
		t.Run(dbDriver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, dbDriver)

			var recordID uuid.UUID
			var legacyID uuid.UUID

			t.Run("health and readiness", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/health", nil, false)
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				resp, body := ctx.makeRequest(t, http.MethodGet, "/ready", nil, false)
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Contains(t, string(body), `"ready"`)
			})

			t.Run("admin routes require a token", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/admin/keys/status", nil, false)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("key status reports the database source", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/admin/keys/status", nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var status dto.KeyStatusResponse
				require.NoError(t, json.Unmarshal(body, &status))
				assert.True(t, status.Configured)
				assert.Equal(t, "database", status.Source)
			})

			t.Run("create stores envelopes", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/records", dto.CreateRecordRequest{
					Title:    "mail",
					URL:      "https://mail.example.com",
					Account:  "alice@example.com",
					Password: "S3cr3t!",
					Note:     "backup codes in the safe",
				}, true)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				var created dto.RecordResponse
				require.NoError(t, json.Unmarshal(body, &created))
				assert.Equal(t, "S3cr3t!", created.Password)
				recordID = uuid.MustParse(created.ID)

				rawPassword := testutil.ReadRawField(t, ctx.db, ctx.dbDriver, recordID, "password")
				assert.NotEqual(t, "S3cr3t!", rawPassword)
				assert.Equal(t, "S3cr3t!", ctx.openEnvelope(t, rawPassword))

				// Fields outside the sensitive set stay in plaintext.
				assert.Equal(t, "mail", testutil.ReadRawField(t, ctx.db, ctx.dbDriver, recordID, "title"))
			})

			t.Run("get decrypts", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/records/"+recordID.String(), nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var record dto.RecordResponse
				require.NoError(t, json.Unmarshal(body, &record))
				assert.Equal(t, "alice@example.com", record.Account)
				assert.Equal(t, "S3cr3t!", record.Password)
				assert.Equal(t, "backup codes in the safe", record.Note)
			})

			t.Run("legacy plaintext passes through", func(t *testing.T) {
				legacyID = testutil.InsertRawRecord(t, ctx.db, ctx.dbDriver, map[string]string{
					"password": "hunter2",
				})

				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/records/"+legacyID.String(), nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var record dto.RecordResponse
				require.NoError(t, json.Unmarshal(body, &record))
				assert.Equal(t, "hunter2", record.Password)
			})

			t.Run("list", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/records?limit=10", nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var list dto.ListRecordsResponse
				require.NoError(t, json.Unmarshal(body, &list))
				assert.Len(t, list.Data, 2)
			})

			t.Run("rotate", func(t *testing.T) {
				newKey, err := cryptoDomain.GenerateKey()
				require.NoError(t, err)

				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/admin/keys/rotate", dto.RotateKeyRequest{
					OldKey: ctx.activeKey,
					NewKey: newKey,
				}, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var result vaultDomain.RotationResult
				require.NoError(t, json.Unmarshal(body, &result))

				// The legacy row cannot be opened with the old key and is reported.
				assert.False(t, result.Success)
				assert.Equal(t, 1, result.UpdatedCount)
				require.Len(t, result.Errors, 1)
				assert.Equal(t, legacyID, result.Errors[0].RecordID)
				assert.Equal(t, "password", result.Errors[0].Field)

				assert.Equal(t, "hunter2", testutil.ReadRawField(t, ctx.db, ctx.dbDriver, legacyID, "password"))

				settings, err := ctx.container.SettingRepository()
				require.NoError(t, err)
				stored, err := settings.Get(context.Background(), testKeyName)
				require.NoError(t, err)
				assert.Equal(t, newKey, stored)

				ctx.activeKey = newKey
			})

			t.Run("records read with the new key", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/records/"+recordID.String(), nil, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var record dto.RecordResponse
				require.NoError(t, json.Unmarshal(body, &record))
				assert.Equal(t, "S3cr3t!", record.Password)
				assert.Equal(t, "alice@example.com", record.Account)

				rawNote := testutil.ReadRawField(t, ctx.db, ctx.dbDriver, recordID, "note")
				assert.Equal(t, "backup codes in the safe", ctx.openEnvelope(t, rawNote))
			})

			t.Run("rotate rejects malformed keys", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/admin/keys/rotate", dto.RotateKeyRequest{
					OldKey: ctx.activeKey,
					NewKey: "c2hvcnQ=",
				}, true)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			})

			t.Run("delete", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/records/"+recordID.String(), nil, true)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/records/"+recordID.String(), nil, true)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			})
		})
	}
}
