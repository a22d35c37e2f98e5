// Package mocks provides mock implementations of the vault use cases for handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/credvault/internal/vault/usecase"
)

// MockRecordUseCase is a mock implementation of RecordUseCase.
type MockRecordUseCase struct {
	mock.Mock
}

func (m *MockRecordUseCase) Create(
	ctx context.Context,
	input vaultUseCase.CreateRecordInput,
) (*vaultDomain.Record, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Record), args.Error(1)
}

func (m *MockRecordUseCase) Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Record), args.Error(1)
}

func (m *MockRecordUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Record), args.Error(1)
}

func (m *MockRecordUseCase) Delete(ctx context.Context, recordID uuid.UUID) error {
	return m.Called(ctx, recordID).Error(0)
}

func (m *MockRecordUseCase) KeyStatus(ctx context.Context) (*cryptoDomain.KeyStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyStatus), args.Error(1)
}

// MockRotationUseCase is a mock implementation of RotationUseCase.
type MockRotationUseCase struct {
	mock.Mock
}

func (m *MockRotationUseCase) RotateKey(ctx context.Context, oldKey, newKey string) *vaultDomain.RotationResult {
	return m.Called(ctx, oldKey, newKey).Get(0).(*vaultDomain.RotationResult)
}

var (
	_ vaultUseCase.RecordUseCase   = (*MockRecordUseCase)(nil)
	_ vaultUseCase.RotationUseCase = (*MockRotationUseCase)(nil)
)
