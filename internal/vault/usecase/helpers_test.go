package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

var errStoreUnavailable = errors.New("store unavailable")

// memoryStore is an in-memory RecordRepository.
type memoryStore struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*vaultDomain.Record
	order      []uuid.UUID
	failUpdate map[uuid.UUID]bool
	fetchErr   error
	updates    int
	fetches    int
	// afterUpdate runs after each successful update with the running total.
	afterUpdate func(updates int)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records:    make(map[uuid.UUID]*vaultDomain.Record),
		failUpdate: make(map[uuid.UUID]bool),
	}
}

func (m *memoryStore) Create(ctx context.Context, record *vaultDomain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *record
	m.records[record.ID] = &stored
	m.order = append(m.order, record.ID)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[recordID]
	if !ok {
		return nil, vaultDomain.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memoryStore) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]*vaultDomain.Record, 0)
	for i := offset; i < len(m.order) && len(records) < limit; i++ {
		copied := *m.records[m.order[i]]
		records = append(records, &copied)
	}
	return records, nil
}

func (m *memoryStore) Delete(ctx context.Context, recordID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[recordID]; !ok {
		return vaultDomain.ErrRecordNotFound
	}
	delete(m.records, recordID)
	m.order = slices.DeleteFunc(m.order, func(id uuid.UUID) bool { return id == recordID })
	return nil
}

func (m *memoryStore) FetchAll(
	ctx context.Context,
	fields vaultDomain.FieldSet,
) ([]*vaultDomain.RecordFields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	all := make([]*vaultDomain.RecordFields, 0, len(m.order))
	for _, id := range m.order {
		values := make(map[string]string, len(fields))
		for _, field := range fields {
			values[field], _ = m.records[id].Field(field)
		}
		all = append(all, &vaultDomain.RecordFields{ID: id, Values: values})
	}
	return all, nil
}

func (m *memoryStore) UpdateFields(ctx context.Context, recordID uuid.UUID, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate[recordID] {
		return errStoreUnavailable
	}
	record, ok := m.records[recordID]
	if !ok {
		return vaultDomain.ErrRecordNotFound
	}
	for field, value := range values {
		record.SetField(field, value)
	}
	m.updates++
	if m.afterUpdate != nil {
		m.afterUpdate(m.updates)
	}
	return nil
}

func (m *memoryStore) field(t *testing.T, recordID uuid.UUID, name string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.records[recordID].Field(name)
	require.True(t, ok)
	return value
}

func (m *memoryStore) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

// memorySettings is an in-memory SettingRepository that remembers how many
// record updates had happened when a value was written.
type memorySettings struct {
	mu               sync.Mutex
	values           map[string]string
	store            *memoryStore
	updatesAtPersist int
	setErr           error
	// honorContext makes Get and Set fail on a done context like a SQL driver.
	honorContext bool
}

func newMemorySettings(store *memoryStore) *memorySettings {
	return &memorySettings{values: make(map[string]string), store: store, updatesAtPersist: -1}
}

func (s *memorySettings) Get(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.honorContext && ctx.Err() != nil {
		return "", ctx.Err()
	}
	value, ok := s.values[name]
	if !ok {
		return "", cryptoDomain.ErrSettingNotFound
	}
	return value, nil
}

func (s *memorySettings) Set(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.honorContext && ctx.Err() != nil {
		return ctx.Err()
	}
	if s.setErr != nil {
		return s.setErr
	}
	s.values[name] = value
	if s.store != nil {
		s.updatesAtPersist = s.store.updateCount()
	}
	return nil
}

type rotationEvents struct {
	mu      sync.Mutex
	rotated []time.Time
}

func (r *rotationEvents) BeforeEncrypt(field, plaintext string) {}

func (r *rotationEvents) AfterDecrypt(field, plaintext string) {}

func (r *rotationEvents) KeyRotated(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotated = append(r.rotated, at)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func generateKey(t *testing.T) (string, cryptoDomain.Key) {
	t.Helper()
	encoded, err := cryptoDomain.GenerateKey()
	require.NoError(t, err)
	key, err := cryptoDomain.DecodeKey(encoded)
	require.NoError(t, err)
	return encoded, key
}
