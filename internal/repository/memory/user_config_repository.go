package memory

import (
	"context"
	"sync"

	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
)

type userConfigRepository struct {
	mu        sync.RWMutex
	overrides map[string]models.SRSConfigOverride
}

// NewUserConfigRepository returns a process-local UserConfigRepository.
func NewUserConfigRepository() repository.UserConfigRepository {
	return &userConfigRepository{overrides: make(map[string]models.SRSConfigOverride)}
}

func (r *userConfigRepository) Get(_ context.Context, userID string) (models.SRSConfigOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overrides[userID], nil
}

func (r *userConfigRepository) Save(_ context.Context, userID string, override models.SRSConfigOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[userID] = override
	return nil
}
