package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/allisson/go-env"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	apperrors "github.com/allisson/credvault/internal/errors"
)

// KeyLookupFunc adapts a function to the KeyLookup interface.
type KeyLookupFunc func(ctx context.Context, name string) (string, error)

// Lookup calls f.
func (f KeyLookupFunc) Lookup(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// ConstantLookup returns a lookup that always yields value, typically a key
// compiled into the binary with -ldflags.
func ConstantLookup(value string) KeyLookup {
	return KeyLookupFunc(func(context.Context, string) (string, error) {
		return value, nil
	})
}

// EnvironmentLookup returns a lookup reading the process environment.
func EnvironmentLookup() KeyLookup {
	return KeyLookupFunc(func(_ context.Context, name string) (string, error) {
		return env.GetString(name, ""), nil
	})
}

// SettingLookup returns a lookup reading the settings repository. A missing
// row is reported as an empty value.
func SettingLookup(repo SettingRepository) KeyLookup {
	return KeyLookupFunc(func(ctx context.Context, name string) (string, error) {
		value, err := repo.Get(ctx, name)
		if err != nil {
			if apperrors.Is(err, cryptoDomain.ErrSettingNotFound) {
				return "", nil
			}
			return "", err
		}
		return value, nil
	})
}

// keySource pairs a provenance tag with the lookup that reads it.
type keySource struct {
	source cryptoDomain.KeySource
	lookup KeyLookup
}

// keyResolver implements KeyResolver with the fixed priority
// constant > environment > database.
type keyResolver struct {
	name     string
	sources  []keySource
	settings SettingRepository
	logger   *slog.Logger
}

// NewKeyResolver creates a KeyResolver that looks for the key called name.
// constant and environment may be nil to disable those sources; settings may be
// nil when no database is available, which also disables PersistKey.
func NewKeyResolver(
	name string,
	constant KeyLookup,
	environment KeyLookup,
	settings SettingRepository,
	logger *slog.Logger,
) KeyResolver {
	sources := make([]keySource, 0, 3)
	if constant != nil {
		sources = append(sources, keySource{source: cryptoDomain.KeySourceConstant, lookup: constant})
	}
	if environment != nil {
		sources = append(sources, keySource{source: cryptoDomain.KeySourceEnvironment, lookup: environment})
	}
	if settings != nil {
		sources = append(sources, keySource{source: cryptoDomain.KeySourceDatabase, lookup: SettingLookup(settings)})
	}

	return &keyResolver{
		name:     name,
		sources:  sources,
		settings: settings,
		logger:   logger,
	}
}

// resolve returns the first source holding a non-empty value. Later sources are
// not consulted once one yields a value.
func (k *keyResolver) resolve(ctx context.Context) (cryptoDomain.KeySource, string, error) {
	for _, s := range k.sources {
		value, err := s.lookup.Lookup(ctx, k.name)
		if err != nil {
			return cryptoDomain.KeySourceNone, "", fmt.Errorf("failed to read key from %s source: %w", s.source, err)
		}
		if value = strings.TrimSpace(value); value != "" {
			return s.source, value, nil
		}
	}
	return cryptoDomain.KeySourceNone, "", nil
}

// GetKey decodes the active key. A value that is not base64 yields an empty key;
// a value of the wrong length is returned as is and fails Valid.
func (k *keyResolver) GetKey(ctx context.Context) (cryptoDomain.Key, error) {
	source, value, err := k.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if source == cryptoDomain.KeySourceNone {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		k.logger.Warn("encryption key is not valid base64",
			slog.String("source", source.String()),
			slog.String("name", k.name),
		)
		return nil, nil
	}
	return cryptoDomain.Key(raw), nil
}

// GetKeySource returns the provenance of the active key.
func (k *keyResolver) GetKeySource(ctx context.Context) (cryptoDomain.KeySource, error) {
	source, _, err := k.resolve(ctx)
	return source, err
}

// IsConfigured reports whether a valid 32-byte key is available. Lookup errors
// count as not configured.
func (k *keyResolver) IsConfigured(ctx context.Context) bool {
	key, err := k.GetKey(ctx)
	if err != nil {
		k.logger.Error("failed to resolve encryption key", slog.Any("error", err))
		return false
	}
	defer key.Zero()

	return key.Valid()
}

// PersistKey writes encodedKey to the settings repository.
func (k *keyResolver) PersistKey(ctx context.Context, encodedKey string) error {
	if !cryptoDomain.ValidateKeyFormat(encodedKey) {
		return cryptoDomain.ErrInvalidKeyFormat
	}
	if k.settings == nil {
		return apperrors.Wrap(apperrors.ErrUnavailable, "database key source is not available")
	}
	if err := k.settings.Set(ctx, k.name, encodedKey); err != nil {
		return apperrors.Wrap(err, "failed to persist encryption key")
	}
	return nil
}
