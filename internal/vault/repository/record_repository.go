// Package repository implements vault record persistence for PostgreSQL and MySQL.
//
// Both implementations share one query builder and differ only in placeholder
// syntax and id encoding: PostgreSQL stores ids as UUID, MySQL as BINARY(16).
// Every write is a single statement, so an UpdateFields call either applies all
// of its fields or none of them.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credvault/internal/database"
	apperrors "github.com/allisson/credvault/internal/errors"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

// DefaultFetchPageSize bounds the rows read per query by FetchAll.
const DefaultFetchPageSize = 500

const recordColumns = "id, title, url, account, password, totp_token, recovery_codes, note, created_at, updated_at"

type dialect struct {
	placeholder func(n int) string
	encodeID    func(id uuid.UUID) (any, error)
	decodeID    func(raw []byte) (uuid.UUID, error)
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	encodeID:    func(id uuid.UUID) (any, error) { return id, nil },
	decodeID:    uuid.ParseBytes,
}

var mysqlDialect = dialect{
	placeholder: func(int) string { return "?" },
	encodeID:    func(id uuid.UUID) (any, error) { return id.MarshalBinary() },
	decodeID:    uuid.FromBytes,
}

// recordStore holds the dialect independent queries.
type recordStore struct {
	db       database.Querier
	dialect  dialect
	pageSize int
}

// PostgreSQLRecordRepository persists records in PostgreSQL.
type PostgreSQLRecordRepository struct {
	recordStore
}

// NewPostgreSQLRecordRepository creates a PostgreSQL record repository.
func NewPostgreSQLRecordRepository(db database.Querier) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{
		recordStore{db: db, dialect: postgresDialect, pageSize: DefaultFetchPageSize},
	}
}

// MySQLRecordRepository persists records in MySQL. The DSN must set parseTime=true.
type MySQLRecordRepository struct {
	recordStore
}

// NewMySQLRecordRepository creates a MySQL record repository.
func NewMySQLRecordRepository(db database.Querier) *MySQLRecordRepository {
	return &MySQLRecordRepository{
		recordStore{db: db, dialect: mysqlDialect, pageSize: DefaultFetchPageSize},
	}
}

// WithPageSize changes the FetchAll page size. Values below 1 are ignored.
func (s *recordStore) WithPageSize(size int) {
	if size > 0 {
		s.pageSize = size
	}
}

// Create inserts a new record.
func (s *recordStore) Create(ctx context.Context, record *vaultDomain.Record) error {
	id, err := s.dialect.encodeID(record.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode record id")
	}

	query := fmt.Sprintf(
		"INSERT INTO vault_records (%s) VALUES (%s)",
		recordColumns,
		s.placeholders(1, 10),
	)

	_, err = s.db.ExecContext(
		ctx,
		query,
		id,
		record.Title,
		record.URL,
		record.Account,
		record.Password,
		record.TOTPToken,
		record.RecoveryCodes,
		record.Note,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// Get returns one record or ErrRecordNotFound.
func (s *recordStore) Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error) {
	id, err := s.dialect.encodeID(recordID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode record id")
	}

	query := fmt.Sprintf("SELECT %s FROM vault_records WHERE id = %s", recordColumns, s.dialect.placeholder(1))

	record, err := s.scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

// List returns records ordered by id.
func (s *recordStore) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM vault_records ORDER BY id LIMIT %s OFFSET %s",
		recordColumns,
		s.dialect.placeholder(1),
		s.dialect.placeholder(2),
	)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	defer func() { _ = rows.Close() }()

	records := make([]*vaultDomain.Record, 0)
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// Delete removes a record or returns ErrRecordNotFound.
func (s *recordStore) Delete(ctx context.Context, recordID uuid.UUID) error {
	id, err := s.dialect.encodeID(recordID)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode record id")
	}

	query := fmt.Sprintf("DELETE FROM vault_records WHERE id = %s", s.dialect.placeholder(1))

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return requireAffected(result)
}

// FetchAll returns the id and the requested fields of every record, ordered by id.
// Rows are read in pages of pageSize using the last seen id as cursor.
func (s *recordStore) FetchAll(ctx context.Context, fields vaultDomain.FieldSet) ([]*vaultDomain.RecordFields, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	columns := "id"
	if len(fields) > 0 {
		columns += ", " + strings.Join(fields, ", ")
	}

	var (
		all    []*vaultDomain.RecordFields
		cursor = uuid.Nil
	)
	for {
		page, err := s.fetchPage(ctx, columns, fields, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < s.pageSize {
			return all, nil
		}
		cursor = page[len(page)-1].ID
	}
}

func (s *recordStore) fetchPage(
	ctx context.Context,
	columns string,
	fields vaultDomain.FieldSet,
	after uuid.UUID,
) ([]*vaultDomain.RecordFields, error) {
	cursor, err := s.dialect.encodeID(after)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode record id")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM vault_records WHERE id > %s ORDER BY id LIMIT %s",
		columns,
		s.dialect.placeholder(1),
		s.dialect.placeholder(2),
	)

	rows, err := s.db.QueryContext(ctx, query, cursor, s.pageSize)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch records")
	}
	defer func() { _ = rows.Close() }()

	page := make([]*vaultDomain.RecordFields, 0, s.pageSize)
	for rows.Next() {
		var rawID []byte
		values := make([]string, len(fields))
		dest := make([]any, 0, len(fields)+1)
		dest = append(dest, &rawID)
		for i := range values {
			dest = append(dest, &values[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record fields")
		}

		id, err := s.dialect.decodeID(rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decode record id")
		}

		record := &vaultDomain.RecordFields{ID: id, Values: make(map[string]string, len(fields))}
		for i, field := range fields {
			record.Values[field] = values[i]
		}
		page = append(page, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate record fields")
	}
	return page, nil
}

// UpdateFields writes values to one record in a single UPDATE. An empty map is a
// no-op. It returns ErrRecordNotFound when no row matches recordID.
func (s *recordStore) UpdateFields(ctx context.Context, recordID uuid.UUID, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	if err := validateFields(fields); err != nil {
		return err
	}

	id, err := s.dialect.encodeID(recordID)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode record id")
	}

	assignments := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for i, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = %s", field, s.dialect.placeholder(i+1)))
		args = append(args, values[field])
	}
	assignments = append(assignments, fmt.Sprintf("updated_at = %s", s.dialect.placeholder(len(fields)+1)))
	args = append(args, time.Now().UTC(), id)

	query := fmt.Sprintf(
		"UPDATE vault_records SET %s WHERE id = %s",
		strings.Join(assignments, ", "),
		s.dialect.placeholder(len(fields)+2),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record fields")
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *recordStore) scanRecord(row rowScanner) (*vaultDomain.Record, error) {
	var (
		record vaultDomain.Record
		rawID  []byte
	)
	err := row.Scan(
		&rawID,
		&record.Title,
		&record.URL,
		&record.Account,
		&record.Password,
		&record.TOTPToken,
		&record.RecoveryCodes,
		&record.Note,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.ID, err = s.dialect.decodeID(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode record id")
	}
	return &record, nil
}

func (s *recordStore) placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = s.dialect.placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}

func validateFields(fields []string) error {
	for _, field := range fields {
		if !vaultDomain.IsEncryptable(field) {
			return vaultDomain.WrapUnknownField(field)
		}
	}
	return nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return vaultDomain.ErrRecordNotFound
	}
	return nil
}
