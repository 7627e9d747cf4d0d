// Package synced layers a remote CardStore behind a local one. Reads and
// writes hit the local store; writes are then pushed to the remote in the
// background on a best-effort basis.
package synced

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/drillflash/internal/jobs"
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
)

// CardStore is a local-first CardStore mirrored to a remote.
type CardStore struct {
	local  repository.CardStore
	remote repository.CardStore
	queue  jobs.SyncQueue
}

var (
	_ repository.CardStore  = (*CardStore)(nil)
	_ repository.DueCounter = (*CardStore)(nil)
)

// NewCardStore wires a synced store. queue must push to the same local and
// remote stores.
func NewCardStore(local, remote repository.CardStore, queue jobs.SyncQueue) *CardStore {
	return &CardStore{local: local, remote: remote, queue: queue}
}

func (s *CardStore) Save(ctx context.Context, key string, cards []models.ReviewCard) error {
	if err := s.local.Save(ctx, key, cards); err != nil {
		return err
	}
	s.push(ctx, key)
	return nil
}

// Load reads the local copy. When the key is unknown locally the remote is
// consulted and, if it has the set, the local store is seeded from it.
func (s *CardStore) Load(ctx context.Context, key string) ([]models.ReviewCard, error) {
	exists, err := s.local.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return s.local.Load(ctx, key)
	}
	return s.Pull(ctx, key)
}

// Pull fetches a card set from the remote and overwrites the local copy.
// A set missing remotely leaves the local store untouched and returns nil.
func (s *CardStore) Pull(ctx context.Context, key string) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx).WithPrefix("synced_store")

	exists, err := s.remote.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check remote card set %s: %w", key, err)
	}
	if !exists {
		return nil, nil
	}
	cards, err := s.remote.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load remote card set %s: %w", key, err)
	}
	if err := s.local.Save(ctx, key, cards); err != nil {
		return nil, err
	}
	log.Info("pulled %d cards from remote: key=%s", len(cards), key)
	return cards, nil
}

func (s *CardStore) Delete(ctx context.Context, key string) error {
	if err := s.local.Delete(ctx, key); err != nil {
		return err
	}
	s.push(ctx, key)
	return nil
}

func (s *CardStore) Clear(ctx context.Context) error {
	if err := s.local.Clear(ctx); err != nil {
		return err
	}
	if err := s.queue.EnqueueClear(); err != nil {
		logger.FromContext(ctx).WithPrefix("synced_store").Warn("remote clear not scheduled: %v", err)
	}
	return nil
}

func (s *CardStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.local.Exists(ctx, key)
}

func (s *CardStore) LastModified(ctx context.Context, key string) (time.Time, error) {
	return s.local.LastModified(ctx, key)
}

func (s *CardStore) Size(ctx context.Context, key string) (int64, error) {
	return s.local.Size(ctx, key)
}

// DueCount delegates to the local store when it keeps an index, and
// otherwise counts the decoded set.
func (s *CardStore) DueCount(ctx context.Context, key string, at time.Time) (int, error) {
	if counter, ok := s.local.(repository.DueCounter); ok {
		return counter.DueCount(ctx, key, at)
	}
	cards, err := s.local.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	due := 0
	for _, c := range cards {
		if !c.Memory.NextReview.After(at) {
			due++
		}
	}
	return due, nil
}

func (s *CardStore) push(ctx context.Context, key string) {
	if err := s.queue.EnqueuePush(key); err != nil {
		logger.FromContext(ctx).WithPrefix("synced_store").Warn("remote push not scheduled: key=%s: %v", key, err)
	}
}
