package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/credvault/internal/config"
	"github.com/allisson/credvault/internal/metrics"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

func TestNewContainer(t *testing.T) {
	cfg := &config.Config{LogLevel: "info", DBDriver: "postgres"}

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainer_Logger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		container := NewContainer(&config.Config{LogLevel: level})
		assert.Nil(t, container.logger)

		logger := container.Logger()
		require.NotNil(t, logger)
		assert.Same(t, logger, container.Logger())
	}
}

func TestContainer_DBErrorIsRemembered(t *testing.T) {
	container := NewContainer(&config.Config{DBDriver: "invalid_driver"})

	_, err := container.DB()
	require.Error(t, err)

	_, err2 := container.DB()
	assert.Equal(t, err, err2)

	_, err = container.RecordRepository()
	assert.ErrorContains(t, err, "failed to get database for record repository")

	_, err = container.KeyResolver()
	assert.ErrorContains(t, err, "failed to get setting repository for key resolver")

	_, err = container.RotationUseCase()
	assert.Error(t, err)
}

func TestContainer_SensitiveFields(t *testing.T) {
	t.Run("from configuration list", func(t *testing.T) {
		container := NewContainer(&config.Config{SensitiveFields: []string{"Password", "note", "password"}})

		fields, err := container.SensitiveFields()
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.FieldSet{"password", "note"}, fields)
	})

	t.Run("empty list uses defaults", func(t *testing.T) {
		container := NewContainer(&config.Config{})

		fields, err := container.SensitiveFields()
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.DefaultSensitiveFields, []string(fields))
	})

	t.Run("from yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fields.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sensitive_fields: [recovery_codes]\n"), 0o600))

		container := NewContainer(&config.Config{VaultFieldsFile: path})

		fields, err := container.SensitiveFields()
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.FieldSet{"recovery_codes"}, fields)
	})

	t.Run("unknown field", func(t *testing.T) {
		container := NewContainer(&config.Config{SensitiveFields: []string{"title"}})

		_, err := container.SensitiveFields()
		assert.ErrorIs(t, err, vaultDomain.ErrUnknownField)
	})
}

func TestContainer_MetricsDisabled(t *testing.T) {
	container := NewContainer(&config.Config{MetricsEnabled: false})

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, businessMetrics)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, server)

	codec, err := container.EnvelopeCodec()
	require.NoError(t, err)
	assert.NotNil(t, codec)
}

func TestContainer_MetricsEnabled(t *testing.T) {
	container := NewContainer(&config.Config{
		MetricsEnabled:   true,
		MetricsNamespace: "credvault_test",
		ServerHost:       "127.0.0.1",
		MetricsPort:      0,
	})

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	require.NotNil(t, provider)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, server)

	observer, err := container.Observer()
	require.NoError(t, err)
	assert.NotNil(t, observer)

	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestContainer_TokenService(t *testing.T) {
	container := NewContainer(&config.Config{})

	service, err := container.TokenService()
	require.NoError(t, err)

	again, err := container.TokenService()
	require.NoError(t, err)
	assert.Same(t, service, again)
}

func TestContainer_ShutdownWithoutComponents(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})
	assert.NoError(t, container.Shutdown(context.Background()))
}
