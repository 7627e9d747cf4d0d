package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/drillflash/internal/models"
)

// MockUserConfigRepository is a mock implementation of repository.UserConfigRepository
type MockUserConfigRepository struct {
	mock.Mock
}

func (m *MockUserConfigRepository) Get(ctx context.Context, userID string) (models.SRSConfigOverride, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.SRSConfigOverride), args.Error(1)
}

func (m *MockUserConfigRepository) Save(ctx context.Context, userID string, override models.SRSConfigOverride) error {
	args := m.Called(ctx, userID, override)
	return args.Error(0)
}
