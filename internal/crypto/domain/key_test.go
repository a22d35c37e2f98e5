package domain

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/credvault/internal/errors"
)

func encodedBytes(n int) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, n))
}

func TestValidateKeyFormat(t *testing.T) {
	t.Run("accepts 32 byte key", func(t *testing.T) {
		assert.True(t, ValidateKeyFormat(encodedBytes(32)))
	})

	t.Run("rejects wrong lengths", func(t *testing.T) {
		for _, n := range []int{0, 16, 24, 31, 33, 64} {
			assert.False(t, ValidateKeyFormat(encodedBytes(n)), "length %d", n)
		}
	})

	t.Run("rejects non base64", func(t *testing.T) {
		assert.False(t, ValidateKeyFormat("this is not base64!"))
		assert.False(t, ValidateKeyFormat(strings.Repeat("*", 44)))
	})

	t.Run("rejects url alphabet", func(t *testing.T) {
		raw := bytes.Repeat([]byte{0xfb, 0xff}, 16)
		urlEncoded := base64.URLEncoding.EncodeToString(raw)
		require.Contains(t, urlEncoded, "-")
		assert.False(t, ValidateKeyFormat(urlEncoded))
	})
}

func TestDecodeKey(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		key, err := DecodeKey(encodedBytes(32))
		require.NoError(t, err)
		assert.True(t, key.Valid())
		assert.Equal(t, bytes.Repeat([]byte{0x42}, 32), []byte(key))
	})

	t.Run("wrong size", func(t *testing.T) {
		key, err := DecodeKey(encodedBytes(16))
		assert.Nil(t, key)
		assert.ErrorIs(t, err, ErrInvalidKeyFormat)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "got 16")
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := DecodeKey("%%%")
		assert.ErrorIs(t, err, ErrInvalidKeyFormat)
	})
}

func TestGenerateKey(t *testing.T) {
	first, err := GenerateKey()
	require.NoError(t, err)
	second, err := GenerateKey()
	require.NoError(t, err)

	assert.True(t, ValidateKeyFormat(first))
	assert.True(t, ValidateKeyFormat(second))
	assert.NotEqual(t, first, second)
}

func TestKey_NeverPrinted(t *testing.T) {
	key, err := DecodeKey(encodedBytes(32))
	require.NoError(t, err)

	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", key))
	assert.Equal(t, "[REDACTED]", key.String())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("resolved", slog.Any("key", key))
	assert.NotContains(t, buf.String(), encodedBytes(32))
	assert.Contains(t, buf.String(), "[REDACTED]")
}

func TestKey_Zero(t *testing.T) {
	key, err := DecodeKey(encodedBytes(32))
	require.NoError(t, err)

	key.Zero()
	assert.Equal(t, make([]byte, 32), []byte(key))

	assert.NotPanics(t, func() { Zero(nil) })
}

func TestKeySource(t *testing.T) {
	cases := map[KeySource]string{
		KeySourceNone:        "none",
		KeySourceConstant:    "constant",
		KeySourceEnvironment: "environment",
		KeySourceDatabase:    "database",
	}
	for source, name := range cases {
		assert.Equal(t, name, source.String())

		text, err := source.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))

		parsed, err := ParseKeySource(name)
		require.NoError(t, err)
		assert.Equal(t, source, parsed)
	}

	_, err := ParseKeySource("vault")
	assert.Error(t, err)
}

func TestDecryptResult(t *testing.T) {
	assert.False(t, PassThrough("legacy").Decrypted())
	assert.Equal(t, "legacy", PassThrough("legacy").Value)

	assert.True(t, DecryptedValue("alice").Decrypted())
	assert.Equal(t, "alice", DecryptedValue("alice").Value)
}
