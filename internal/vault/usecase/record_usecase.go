package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	cryptoService "github.com/allisson/credvault/internal/crypto/service"
	apperrors "github.com/allisson/credvault/internal/errors"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

type recordUseCase struct {
	repo     RecordRepository
	codec    cryptoService.EnvelopeCodec
	resolver cryptoService.KeyResolver
	fields   vaultDomain.FieldSet
	logger   *slog.Logger
}

// NewRecordUseCase creates the record use case. Only fields in the given set are
// encrypted; other encryptable columns are stored as plaintext.
func NewRecordUseCase(
	repo RecordRepository,
	codec cryptoService.EnvelopeCodec,
	resolver cryptoService.KeyResolver,
	fields vaultDomain.FieldSet,
	logger *slog.Logger,
) RecordUseCase {
	return &recordUseCase{
		repo:     repo,
		codec:    codec,
		resolver: resolver,
		fields:   fields,
		logger:   logger,
	}
}

// Create encrypts the sensitive fields and stores the record. It refuses to
// store secrets while no valid key is configured.
func (r *recordUseCase) Create(ctx context.Context, input CreateRecordInput) (*vaultDomain.Record, error) {
	key, err := r.resolver.GetKey(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve encryption key")
	}
	defer key.Zero()

	if !key.Valid() {
		return nil, cryptoDomain.ErrNoKeyConfigured
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate record id")
	}
	now := time.Now().UTC()

	plain := vaultDomain.Record{
		ID:            id,
		Title:         input.Title,
		URL:           input.URL,
		Account:       input.Account,
		Password:      input.Password,
		TOTPToken:     input.TOTPToken,
		RecoveryCodes: input.RecoveryCodes,
		Note:          input.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	stored := plain
	for _, field := range r.fields {
		value, _ := stored.Field(field)
		stored.SetField(field, r.codec.Encrypt(field, value, key))
	}

	if err := r.repo.Create(ctx, &stored); err != nil {
		return nil, err
	}

	r.logger.Info("record created", slog.String("record_id", id.String()))
	return &plain, nil
}

// Get returns one record with its sensitive fields decrypted.
func (r *recordUseCase) Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error) {
	record, err := r.repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	key, err := r.resolver.GetKey(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve encryption key")
	}
	defer key.Zero()

	r.decryptRecord(record, key)
	return record, nil
}

// List returns a page of records with their sensitive fields decrypted.
func (r *recordUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error) {
	records, err := r.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	key, err := r.resolver.GetKey(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve encryption key")
	}
	defer key.Zero()

	for _, record := range records {
		r.decryptRecord(record, key)
	}
	return records, nil
}

// Delete removes a record.
func (r *recordUseCase) Delete(ctx context.Context, recordID uuid.UUID) error {
	if err := r.repo.Delete(ctx, recordID); err != nil {
		return err
	}
	r.logger.Info("record deleted", slog.String("record_id", recordID.String()))
	return nil
}

// KeyStatus reports whether a valid key is configured and where it comes from.
func (r *recordUseCase) KeyStatus(ctx context.Context) (*cryptoDomain.KeyStatus, error) {
	source, err := r.resolver.GetKeySource(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to resolve key source")
	}
	return &cryptoDomain.KeyStatus{
		Configured: r.resolver.IsConfigured(ctx),
		Source:     source,
	}, nil
}

// decryptRecord replaces envelopes with plaintext. Values that do not decrypt
// are left as stored.
func (r *recordUseCase) decryptRecord(record *vaultDomain.Record, key cryptoDomain.Key) {
	for _, field := range r.fields {
		value, _ := record.Field(field)
		record.SetField(field, r.codec.Decrypt(field, value, key).Value)
	}
}
