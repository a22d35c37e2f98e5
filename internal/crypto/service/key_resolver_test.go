package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	apperrors "github.com/allisson/credvault/internal/errors"
)

const testKeyName = "VAULT_ENCRYPTION_KEY"

type mockSettingRepository struct {
	mock.Mock
}

func (m *mockSettingRepository) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockSettingRepository) Set(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encodedKey(t *testing.T) string {
	t.Helper()
	key, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)
	return key
}

func TestKeyResolver_Priority(t *testing.T) {
	ctx := context.Background()
	constantKey := encodedKey(t)
	envKey := encodedKey(t)
	dbKey := encodedKey(t)

	t.Run("constant wins and stops the search", func(t *testing.T) {
		t.Setenv(testKeyName, envKey)
		settings := &mockSettingRepository{}

		resolver := NewKeyResolver(testKeyName, ConstantLookup(constantKey), EnvironmentLookup(), settings, discardLogger())

		key, err := resolver.GetKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, constantKey, key.Encode())

		source, err := resolver.GetKeySource(ctx)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.KeySourceConstant, source)

		settings.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("environment beats database", func(t *testing.T) {
		t.Setenv(testKeyName, envKey)
		settings := &mockSettingRepository{}

		resolver := NewKeyResolver(testKeyName, ConstantLookup(""), EnvironmentLookup(), settings, discardLogger())

		key, err := resolver.GetKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, envKey, key.Encode())

		source, err := resolver.GetKeySource(ctx)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.KeySourceEnvironment, source)
		settings.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("database when nothing else is set", func(t *testing.T) {
		t.Setenv(testKeyName, "")
		settings := &mockSettingRepository{}
		settings.On("Get", ctx, testKeyName).Return(dbKey, nil)

		resolver := NewKeyResolver(testKeyName, ConstantLookup(""), EnvironmentLookup(), settings, discardLogger())

		key, err := resolver.GetKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, dbKey, key.Encode())

		source, err := resolver.GetKeySource(ctx)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.KeySourceDatabase, source)
		assert.True(t, resolver.IsConfigured(ctx))
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv(testKeyName, "")
		settings := &mockSettingRepository{}
		settings.On("Get", ctx, testKeyName).Return("", cryptoDomain.ErrSettingNotFound)

		resolver := NewKeyResolver(testKeyName, ConstantLookup(""), EnvironmentLookup(), settings, discardLogger())

		key, err := resolver.GetKey(ctx)
		require.NoError(t, err)
		assert.Empty(t, key)

		source, err := resolver.GetKeySource(ctx)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.KeySourceNone, source)
		assert.False(t, resolver.IsConfigured(ctx))
	})
}

func TestKeyResolver_IsConfigured(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong length is resolved but not configured", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, 16))
		resolver := NewKeyResolver(testKeyName, ConstantLookup(short), nil, nil, discardLogger())

		key, err := resolver.GetKey(ctx)
		require.NoError(t, err)
		assert.Len(t, key, 16)
		assert.False(t, resolver.IsConfigured(ctx))
	})

	t.Run("invalid base64 yields empty key", func(t *testing.T) {
		resolver := NewKeyResolver(testKeyName, ConstantLookup("not-base64!"), nil, nil, discardLogger())

		key, err := resolver.GetKey(ctx)
		require.NoError(t, err)
		assert.Empty(t, key)
		assert.False(t, resolver.IsConfigured(ctx))

		source, err := resolver.GetKeySource(ctx)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.KeySourceConstant, source)
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		value := encodedKey(t)
		resolver := NewKeyResolver(testKeyName, ConstantLookup("  "+value+"\n"), nil, nil, discardLogger())
		assert.True(t, resolver.IsConfigured(ctx))
	})

	t.Run("lookup error", func(t *testing.T) {
		settings := &mockSettingRepository{}
		settings.On("Get", ctx, testKeyName).Return("", errors.New("connection refused"))

		resolver := NewKeyResolver(testKeyName, nil, nil, settings, discardLogger())

		_, err := resolver.GetKey(ctx)
		assert.ErrorContains(t, err, "database source")
		assert.False(t, resolver.IsConfigured(ctx))
	})
}

func TestKeyResolver_PersistKey(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		value := encodedKey(t)
		settings := &mockSettingRepository{}
		settings.On("Set", ctx, testKeyName, value).Return(nil).Once()

		resolver := NewKeyResolver(testKeyName, nil, nil, settings, discardLogger())
		require.NoError(t, resolver.PersistKey(ctx, value))
		settings.AssertExpectations(t)
	})

	t.Run("invalid key", func(t *testing.T) {
		settings := &mockSettingRepository{}
		resolver := NewKeyResolver(testKeyName, nil, nil, settings, discardLogger())

		err := resolver.PersistKey(ctx, "short")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeyFormat)
		settings.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no settings repository", func(t *testing.T) {
		resolver := NewKeyResolver(testKeyName, nil, nil, nil, discardLogger())
		err := resolver.PersistKey(ctx, encodedKey(t))
		assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
	})

	t.Run("repository failure", func(t *testing.T) {
		value := encodedKey(t)
		settings := &mockSettingRepository{}
		settings.On("Set", ctx, testKeyName, value).Return(errors.New("disk full"))

		resolver := NewKeyResolver(testKeyName, nil, nil, settings, discardLogger())
		assert.ErrorContains(t, resolver.PersistKey(ctx, value), "failed to persist encryption key")
	})
}

func TestObservers_FanOut(t *testing.T) {
	first := &recordingObserver{}
	second := &recordingObserver{}
	observers := Observers{first, NoOpObserver{}, second, NewLogObserver(discardLogger())}

	observers.BeforeEncrypt("note", "hello")
	observers.AfterDecrypt("note", "hello")

	assert.Len(t, first.events, 2)
	assert.Equal(t, first.events, second.events)
}
