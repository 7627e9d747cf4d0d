package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/repository/memory"
	"github.com/vytor/drillflash/internal/repository/repotest"
	"github.com/vytor/drillflash/internal/worker"
)

// pausingStore holds its first Load after reading, so the caller keeps a
// snapshot that goes stale while it waits.
type pausingStore struct {
	repository.CardStore
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (s *pausingStore) Load(ctx context.Context, key string) ([]models.ReviewCard, error) {
	cards, err := s.CardStore.Load(ctx, key)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.loaded)
		<-s.release
	}
	return cards, err
}

func TestPushCardSetJob_SameKeyPushesDoNotOverlap(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	older := repotest.SampleCards(now)
	newer := repotest.SampleCards(now)[:1]

	local := &pausingStore{CardStore: memory.NewCardStore(), loaded: make(chan struct{}), release: make(chan struct{})}
	remote := memory.NewCardStore()
	locks := worker.NewKeyLocks()
	require.NoError(t, local.Save(ctx, "user-1", older))

	var wg sync.WaitGroup
	run := func(job worker.Job) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, job.Run(ctx))
		}()
	}

	run(&worker.PushCardSetJob{Local: local, Remote: remote, Key: "user-1", Locks: locks})
	<-local.loaded

	require.NoError(t, local.Save(ctx, "user-1", newer))
	run(&worker.PushCardSetJob{Local: local, Remote: remote, Key: "user-1", Locks: locks})

	assert.Never(t, func() bool {
		exists, _ := remote.Exists(ctx, "user-1")
		return exists
	}, 50*time.Millisecond, 5*time.Millisecond, "second push must wait for the first")

	close(local.release)
	wg.Wait()

	mirrored, err := remote.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, newer, mirrored)
}

func TestKeyLocks(t *testing.T) {
	locks := worker.NewKeyLocks()

	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")

	acquired := make(chan struct{})
	go func() {
		defer locks.Lock("a")()
		close(acquired)
	}()
	select {
	case <-acquired:
		t.Fatal("lock on a held twice")
	case <-time.After(20 * time.Millisecond):
	}
	unlockA()
	<-acquired

	all := make(chan struct{})
	go func() {
		defer locks.LockAll()()
		close(all)
	}()
	select {
	case <-all:
		t.Fatal("LockAll acquired while b is held")
	case <-time.After(20 * time.Millisecond):
	}
	unlockB()
	<-all
}
