package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
)

type entry struct {
	payload  []byte
	modified time.Time
}

type cardStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewCardStore returns a process-local CardStore. Card sets are held in
// serialized form so callers never share slices with the store.
func NewCardStore() repository.CardStore {
	return &cardStore{
		entries: make(map[string]entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *cardStore) Save(ctx context.Context, key string, cards []models.ReviewCard) error {
	log := logger.FromContext(ctx).WithPrefix("memory_store")
	payload, err := repository.EncodeCards(cards)
	if err != nil {
		log.Error("failed to encode cards: key=%s: %v", key, err)
		return err
	}
	s.mu.Lock()
	s.entries[key] = entry{payload: payload, modified: s.now()}
	s.mu.Unlock()
	log.Debug("saved %d cards: key=%s", len(cards), key)
	return nil
}

func (s *cardStore) Load(ctx context.Context, key string) ([]models.ReviewCard, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		logger.FromContext(ctx).WithPrefix("memory_store").Debug("no cards stored: key=%s", key)
		return nil, nil
	}
	return repository.DecodeCards(e.payload)
}

func (s *cardStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *cardStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	return nil
}

func (s *cardStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok, nil
}

func (s *cardStore) LastModified(_ context.Context, key string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[key].modified, nil
}

func (s *cardStore) Size(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries[key].payload)), nil
}
