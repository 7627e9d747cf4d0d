package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/drillflash/internal/models"
)

// MockCardStore is a mock implementation of repository.CardStore
type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) Save(ctx context.Context, key string, cards []models.ReviewCard) error {
	args := m.Called(ctx, key, cards)
	return args.Error(0)
}

func (m *MockCardStore) Load(ctx context.Context, key string) ([]models.ReviewCard, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewCard), args.Error(1)
}

func (m *MockCardStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCardStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCardStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCardStore) LastModified(ctx context.Context, key string) (time.Time, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockCardStore) Size(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}
