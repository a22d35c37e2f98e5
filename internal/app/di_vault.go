package app

import (
	"fmt"
	"sync"

	"github.com/allisson/credvault/internal/database"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
	vaultHTTP "github.com/allisson/credvault/internal/vault/http"
	vaultRepository "github.com/allisson/credvault/internal/vault/repository"
	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// vaultComponents holds the lazily built record and rotation components.
type vaultComponents struct {
	sensitiveFields  vaultDomain.FieldSet
	recordRepository vaultUseCase.RecordRepository
	recordUseCase    vaultUseCase.RecordUseCase
	rotationUseCase  vaultUseCase.RotationUseCase
	keyHandler       *vaultHTTP.KeyHandler
	recordHandler    *vaultHTTP.RecordHandler

	sensitiveFieldsInit  sync.Once
	recordRepositoryInit sync.Once
	recordUseCaseInit    sync.Once
	rotationUseCaseInit  sync.Once
	keyHandlerInit       sync.Once
	recordHandlerInit    sync.Once
}

// SensitiveFields returns the validated set of fields encrypted at rest.
func (c *Container) SensitiveFields() (vaultDomain.FieldSet, error) {
	var err error
	c.vault.sensitiveFieldsInit.Do(func() {
		c.vault.sensitiveFields, err = c.initSensitiveFields()
		if err != nil {
			c.initErrors["sensitiveFields"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sensitiveFields"]; exists {
		return nil, storedErr
	}
	return c.vault.sensitiveFields, nil
}

// RecordRepository returns the record repository for the configured driver.
func (c *Container) RecordRepository() (vaultUseCase.RecordRepository, error) {
	var err error
	c.vault.recordRepositoryInit.Do(func() {
		c.vault.recordRepository, err = c.initRecordRepository()
		if err != nil {
			c.initErrors["recordRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordRepository"]; exists {
		return nil, storedErr
	}
	return c.vault.recordRepository, nil
}

// RecordUseCase returns the record use case wrapped with metrics.
func (c *Container) RecordUseCase() (vaultUseCase.RecordUseCase, error) {
	var err error
	c.vault.recordUseCaseInit.Do(func() {
		c.vault.recordUseCase, err = c.initRecordUseCase()
		if err != nil {
			c.initErrors["recordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordUseCase"]; exists {
		return nil, storedErr
	}
	return c.vault.recordUseCase, nil
}

// RotationUseCase returns the key rotation engine wrapped with metrics.
func (c *Container) RotationUseCase() (vaultUseCase.RotationUseCase, error) {
	var err error
	c.vault.rotationUseCaseInit.Do(func() {
		c.vault.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.initErrors["rotationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationUseCase"]; exists {
		return nil, storedErr
	}
	return c.vault.rotationUseCase, nil
}

// KeyHandler returns the HTTP handler for key administration.
func (c *Container) KeyHandler() (*vaultHTTP.KeyHandler, error) {
	var err error
	c.vault.keyHandlerInit.Do(func() {
		c.vault.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.vault.keyHandler, nil
}

// RecordHandler returns the HTTP handler for vault records.
func (c *Container) RecordHandler() (*vaultHTTP.RecordHandler, error) {
	var err error
	c.vault.recordHandlerInit.Do(func() {
		var recordUseCase vaultUseCase.RecordUseCase
		recordUseCase, err = c.RecordUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get record use case for record handler: %w", err)
			c.initErrors["recordHandler"] = err
			return
		}
		c.vault.recordHandler = vaultHTTP.NewRecordHandler(recordUseCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recordHandler"]; exists {
		return nil, storedErr
	}
	return c.vault.recordHandler, nil
}

func (c *Container) initSensitiveFields() (vaultDomain.FieldSet, error) {
	names, err := c.config.SensitiveFieldNames()
	if err != nil {
		return nil, err
	}

	fields, err := vaultDomain.ParseFieldSet(names)
	if err != nil {
		return nil, fmt.Errorf("invalid sensitive fields: %w", err)
	}
	return fields, nil
}

func (c *Container) initRecordRepository() (vaultUseCase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return vaultRepository.NewMySQLRecordRepository(db), nil
	case database.DriverPostgres:
		return vaultRepository.NewPostgreSQLRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initRecordUseCase() (vaultUseCase.RecordUseCase, error) {
	fields, err := c.SensitiveFields()
	if err != nil {
		return nil, fmt.Errorf("failed to get sensitive fields for record use case: %w", err)
	}

	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for record use case: %w", err)
	}

	codec, err := c.EnvelopeCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope codec for record use case: %w", err)
	}

	resolver, err := c.KeyResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key resolver for record use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for record use case: %w", err)
	}

	useCase := vaultUseCase.NewRecordUseCase(repo, codec, resolver, fields, c.Logger())
	return vaultUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initRotationUseCase() (vaultUseCase.RotationUseCase, error) {
	fields, err := c.SensitiveFields()
	if err != nil {
		return nil, fmt.Errorf("failed to get sensitive fields for rotation use case: %w", err)
	}

	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for rotation use case: %w", err)
	}

	codec, err := c.EnvelopeCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope codec for rotation use case: %w", err)
	}

	resolver, err := c.KeyResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key resolver for rotation use case: %w", err)
	}

	observer, err := c.Observer()
	if err != nil {
		return nil, fmt.Errorf("failed to get observer for rotation use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for rotation use case: %w", err)
	}

	useCase := vaultUseCase.NewRotationUseCase(
		repo,
		codec,
		resolver,
		observer,
		fields,
		c.config.RotationWorkers,
		c.Logger(),
	)
	return vaultUseCase.NewRotationUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initKeyHandler() (*vaultHTTP.KeyHandler, error) {
	rotationUseCase, err := c.RotationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation use case for key handler: %w", err)
	}

	recordUseCase, err := c.RecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get record use case for key handler: %w", err)
	}

	return vaultHTTP.NewKeyHandler(rotationUseCase, recordUseCase, c.Logger()), nil
}
