package app

import (
	"fmt"
	"sync"

	authService "github.com/allisson/credvault/internal/auth/service"
	"github.com/allisson/credvault/internal/config"
	cryptoRepository "github.com/allisson/credvault/internal/crypto/repository"
	cryptoService "github.com/allisson/credvault/internal/crypto/service"
	"github.com/allisson/credvault/internal/database"
)

// cryptoComponents holds the lazily built envelope and key components.
type cryptoComponents struct {
	observer          cryptoService.Observer
	envelopeCodec     cryptoService.EnvelopeCodec
	settingRepository cryptoService.SettingRepository
	keyResolver       cryptoService.KeyResolver
	tokenService      authService.TokenService

	observerInit          sync.Once
	envelopeCodecInit     sync.Once
	settingRepositoryInit sync.Once
	keyResolverInit       sync.Once
	tokenServiceInit      sync.Once
}

// Observer returns the audit observer fanned out to the logger and, when
// enabled, the business metrics.
func (c *Container) Observer() (cryptoService.Observer, error) {
	var err error
	c.crypto.observerInit.Do(func() {
		c.crypto.observer, err = c.initObserver()
		if err != nil {
			c.initErrors["observer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["observer"]; exists {
		return nil, storedErr
	}
	return c.crypto.observer, nil
}

// EnvelopeCodec returns the AES-256-GCM envelope codec.
func (c *Container) EnvelopeCodec() (cryptoService.EnvelopeCodec, error) {
	var err error
	c.crypto.envelopeCodecInit.Do(func() {
		var observer cryptoService.Observer
		observer, err = c.Observer()
		if err != nil {
			err = fmt.Errorf("failed to get observer for envelope codec: %w", err)
			c.initErrors["envelopeCodec"] = err
			return
		}
		c.crypto.envelopeCodec = cryptoService.NewEnvelopeCodec(observer)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeCodec"]; exists {
		return nil, storedErr
	}
	return c.crypto.envelopeCodec, nil
}

// SettingRepository returns the settings store backing the database key source.
func (c *Container) SettingRepository() (cryptoService.SettingRepository, error) {
	var err error
	c.crypto.settingRepositoryInit.Do(func() {
		c.crypto.settingRepository, err = c.initSettingRepository()
		if err != nil {
			c.initErrors["settingRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["settingRepository"]; exists {
		return nil, storedErr
	}
	return c.crypto.settingRepository, nil
}

// KeyResolver returns the resolver for the key named by ENCRYPTION_KEY_NAME
// with the priority build constant, environment, database.
func (c *Container) KeyResolver() (cryptoService.KeyResolver, error) {
	var err error
	c.crypto.keyResolverInit.Do(func() {
		var settings cryptoService.SettingRepository
		settings, err = c.SettingRepository()
		if err != nil {
			err = fmt.Errorf("failed to get setting repository for key resolver: %w", err)
			c.initErrors["keyResolver"] = err
			return
		}
		c.crypto.keyResolver = cryptoService.NewKeyResolver(
			c.config.EncryptionKeyName,
			cryptoService.ConstantLookup(config.BuildEncryptionKey),
			cryptoService.EnvironmentLookup(),
			settings,
			c.Logger(),
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyResolver"]; exists {
		return nil, storedErr
	}
	return c.crypto.keyResolver, nil
}

// TokenService returns the admin token service.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.crypto.tokenServiceInit.Do(func() {
		c.crypto.tokenService, err = authService.NewTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.crypto.tokenService, nil
}

func (c *Container) initObserver() (cryptoService.Observer, error) {
	observers := cryptoService.Observers{cryptoService.NewLogObserver(c.Logger())}
	if !c.config.MetricsEnabled {
		return observers, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for observer: %w", err)
	}
	return append(observers, cryptoService.NewMetricsObserver(businessMetrics)), nil
}

func (c *Container) initSettingRepository() (cryptoService.SettingRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for setting repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return cryptoRepository.NewMySQLSettingRepository(db), nil
	case database.DriverPostgres:
		return cryptoRepository.NewPostgreSQLSettingRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
