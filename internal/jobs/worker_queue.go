package jobs

import (
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/worker"
)

// WorkerQueue implements SyncQueue using a worker pool
type WorkerQueue struct {
	pool   *worker.Pool
	local  repository.CardStore
	remote repository.CardStore
	locks  *worker.KeyLocks
}

// NewWorkerQueue creates a new WorkerQueue implementation. The pool must be
// started by the caller. Pushes for the same key never overlap, whatever the
// pool size.
func NewWorkerQueue(pool *worker.Pool, local, remote repository.CardStore) SyncQueue {
	return &WorkerQueue{
		pool:   pool,
		local:  local,
		remote: remote,
		locks:  worker.NewKeyLocks(),
	}
}

func (q *WorkerQueue) EnqueuePush(key string) error {
	if !q.pool.TrySubmit(&worker.PushCardSetJob{Local: q.local, Remote: q.remote, Key: key, Locks: q.locks}) {
		return ErrQueueFull
	}
	return nil
}

func (q *WorkerQueue) EnqueueClear() error {
	if !q.pool.TrySubmit(&worker.ClearRemoteJob{Remote: q.remote, Locks: q.locks}) {
		return ErrQueueFull
	}
	return nil
}
