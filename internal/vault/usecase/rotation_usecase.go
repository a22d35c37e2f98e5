package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	cryptoService "github.com/allisson/credvault/internal/crypto/service"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

// DefaultRotationWorkers is used when a non-positive worker count is configured.
const DefaultRotationWorkers = 4

// recordOutcome is what one worker reports for one record.
type recordOutcome struct {
	processed bool
	updated   bool
	errors    []vaultDomain.RotationError
}

type rotationUseCase struct {
	records  RecordStore
	codec    cryptoService.EnvelopeCodec
	resolver cryptoService.KeyResolver
	observer cryptoService.Observer
	fields   vaultDomain.FieldSet
	workers  int
	logger   *slog.Logger
	now      func() time.Time
}

// NewRotationUseCase creates the key rotation engine. fields must be the same set
// the record use case encrypts. resolver may be nil when there is no database key
// source to update.
func NewRotationUseCase(
	records RecordStore,
	codec cryptoService.EnvelopeCodec,
	resolver cryptoService.KeyResolver,
	observer cryptoService.Observer,
	fields vaultDomain.FieldSet,
	workers int,
	logger *slog.Logger,
) RotationUseCase {
	if workers < 1 {
		workers = DefaultRotationWorkers
	}
	if observer == nil {
		observer = cryptoService.NoOpObserver{}
	}
	return &rotationUseCase{
		records:  records,
		codec:    codec,
		resolver: resolver,
		observer: observer,
		fields:   fields,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
}

// RotateKey validates both keys, re-encrypts every record with a bounded worker
// pool, then persists newKey when the active key lives in the database. Records
// are rotated independently: a failed field keeps its old envelope and a failed
// record update leaves the whole record untouched.
func (r *rotationUseCase) RotateKey(ctx context.Context, oldKey, newKey string) *vaultDomain.RotationResult {
	oldRaw, err := cryptoDomain.DecodeKey(oldKey)
	if err != nil {
		return vaultDomain.NewRotationFailure("invalid old key: must be base64 encoding of 32 bytes")
	}
	defer oldRaw.Zero()

	newRaw, err := cryptoDomain.DecodeKey(newKey)
	if err != nil {
		return vaultDomain.NewRotationFailure("invalid new key: must be base64 encoding of 32 bytes")
	}
	defer newRaw.Zero()

	records, err := r.records.FetchAll(ctx, r.fields)
	if err != nil {
		r.logger.Error("failed to fetch records for key rotation", slog.Any("error", err))
		return vaultDomain.NewRotationFailure("failed to fetch records")
	}

	r.logger.Info("key rotation started",
		slog.Int("records", len(records)),
		slog.String("fields", r.fields.String()),
		slog.Int("workers", r.workers),
	)

	outcomes := make([]recordOutcome, len(records))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, record := range records {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = r.rotateRecord(ctx, record, oldRaw, newRaw)
			return nil
		})
	}
	_ = g.Wait()

	result := &vaultDomain.RotationResult{}
	skipped := 0
	for _, outcome := range outcomes {
		if !outcome.processed {
			skipped++
			continue
		}
		if outcome.updated {
			result.UpdatedCount++
		}
		result.Errors = append(result.Errors, outcome.errors...)
	}
	if skipped > 0 {
		result.Errors = append(result.Errors, vaultDomain.NewRunError(
			fmt.Sprintf("rotation cancelled: %d record(s) not processed", skipped),
		))
	}

	if skipped == 0 {
		r.finalize(ctx, newKey, result)
	} else {
		r.logger.Warn("key rotation interrupted, new key not persisted", slog.Int("skipped", skipped))
	}

	result.Finalize()
	r.logger.Info("key rotation finished",
		slog.Bool("success", result.Success),
		slog.Int("updated_count", result.UpdatedCount),
		slog.Int("errors", len(result.Errors)),
	)
	return result
}

func (r *rotationUseCase) rotateRecord(
	ctx context.Context,
	record *vaultDomain.RecordFields,
	oldKey, newKey cryptoDomain.Key,
) recordOutcome {
	outcome := recordOutcome{processed: true}
	updates := make(map[string]string, len(r.fields))

	for _, field := range r.fields {
		value := record.Values[field]
		if value == "" {
			continue
		}

		plaintext, err := r.codec.DecryptWithKey(value, oldKey)
		if err != nil {
			outcome.errors = append(outcome.errors, vaultDomain.RotationError{
				RecordID: record.ID,
				Field:    field,
				Message:  vaultDomain.MsgDecryptFailed,
			})
			continue
		}

		envelope, err := r.codec.EncryptWithKey(plaintext, newKey)
		if err != nil {
			outcome.errors = append(outcome.errors, vaultDomain.RotationError{
				RecordID: record.ID,
				Field:    field,
				Message:  vaultDomain.MsgReencryptFailed,
			})
			continue
		}
		updates[field] = envelope
	}

	if len(updates) == 0 {
		return outcome
	}

	if err := r.records.UpdateFields(ctx, record.ID, updates); err != nil {
		r.logger.Error("failed to update rotated record",
			slog.String("record_id", record.ID.String()),
			slog.Any("error", err),
		)
		outcome.errors = append(outcome.errors, vaultDomain.RotationError{
			RecordID: record.ID,
			Field:    vaultDomain.FieldAll,
			Message:  vaultDomain.MsgDatabaseUpdateFailed,
		})
		return outcome
	}

	outcome.updated = true
	return outcome
}

// finalize runs after every worker has returned and only when every record was
// processed, so an interrupted run never switches the active key. Once the sweep
// is complete every envelope is under newKey, so cancellation no longer applies.
func (r *rotationUseCase) finalize(ctx context.Context, newKey string, result *vaultDomain.RotationResult) {
	ctx = context.WithoutCancel(ctx)
	if r.resolver != nil {
		source, err := r.resolver.GetKeySource(ctx)
		switch {
		case err != nil:
			r.logger.Error("failed to resolve key source after rotation", slog.Any("error", err))
			result.Errors = append(result.Errors, vaultDomain.NewRunError("failed to resolve key source"))
		case source == cryptoDomain.KeySourceDatabase:
			if err := r.resolver.PersistKey(ctx, newKey); err != nil {
				r.logger.Error("failed to persist rotated key", slog.Any("error", err))
				result.Errors = append(result.Errors, vaultDomain.NewRunError("failed to persist new key"))
			}
		default:
			r.logger.Warn("active key is not stored in the database, update it manually",
				slog.String("source", source.String()),
			)
		}
	}

	r.observer.KeyRotated(r.now().UTC())
}
