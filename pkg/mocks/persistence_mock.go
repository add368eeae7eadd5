// Package mocks provides testify mocks for the storage and event interfaces.
package mocks

import (
	"context"

	"github.com/dukex/soarbridge/pkg/models"
	"github.com/dukex/soarbridge/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) SaveConversion(ctx context.Context, record *models.ConversionRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockPersistence) ConversionByID(ctx context.Context, id string) (*models.ConversionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ConversionRecord), args.Error(1)
}

func (m *MockPersistence) ListConversions(ctx context.Context, opts persistence.ListConversionsOptions) (*persistence.ConversionListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.ConversionListResult), args.Error(1)
}

func (m *MockPersistence) DeleteConversion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
