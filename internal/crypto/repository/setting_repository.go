// Package repository persists key-value settings. The database key source reads
// the active encryption key from here and rotation writes the new one back.
//
// Values are stored as given. The encryption key is base64 text and is never
// decoded at this layer.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	"github.com/allisson/credvault/internal/database"
	apperrors "github.com/allisson/credvault/internal/errors"
)

// PostgreSQLSettingRepository stores settings in the vault_settings table.
type PostgreSQLSettingRepository struct {
	db database.Querier
}

// NewPostgreSQLSettingRepository creates a PostgreSQL setting repository.
func NewPostgreSQLSettingRepository(db database.Querier) *PostgreSQLSettingRepository {
	return &PostgreSQLSettingRepository{db: db}
}

// Get returns the value stored under name or ErrSettingNotFound.
func (p *PostgreSQLSettingRepository) Get(ctx context.Context, name string) (string, error) {
	query := `SELECT value FROM vault_settings WHERE name = $1`
	return getSetting(ctx, p.db, query, name)
}

// Set upserts the value stored under name.
func (p *PostgreSQLSettingRepository) Set(ctx context.Context, name, value string) error {
	query := `INSERT INTO vault_settings (name, value, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := p.db.ExecContext(ctx, query, name, value, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to set setting")
	}
	return nil
}

// MySQLSettingRepository stores settings in the vault_settings table.
type MySQLSettingRepository struct {
	db database.Querier
}

// NewMySQLSettingRepository creates a MySQL setting repository.
func NewMySQLSettingRepository(db database.Querier) *MySQLSettingRepository {
	return &MySQLSettingRepository{db: db}
}

// Get returns the value stored under name or ErrSettingNotFound.
func (m *MySQLSettingRepository) Get(ctx context.Context, name string) (string, error) {
	query := `SELECT value FROM vault_settings WHERE name = ?`
	return getSetting(ctx, m.db, query, name)
}

// Set upserts the value stored under name.
func (m *MySQLSettingRepository) Set(ctx context.Context, name, value string) error {
	query := `INSERT INTO vault_settings (name, value, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`

	if _, err := m.db.ExecContext(ctx, query, name, value, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to set setting")
	}
	return nil
}

func getSetting(ctx context.Context, db database.Querier, query, name string) (string, error) {
	var value string
	if err := db.QueryRowContext(ctx, query, name).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", cryptoDomain.ErrSettingNotFound
		}
		return "", apperrors.Wrap(err, "failed to get setting")
	}
	return value, nil
}
