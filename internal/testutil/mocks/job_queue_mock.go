package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockSyncQueue is a mock implementation of jobs.SyncQueue
type MockSyncQueue struct {
	mock.Mock
}

func (m *MockSyncQueue) EnqueuePush(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockSyncQueue) EnqueueClear() error {
	args := m.Called()
	return args.Error(0)
}
