package jobs

import "errors"

// ErrQueueFull is returned when a sync job had to be dropped, either
// because the queue was full or because the pool was already stopped.
var ErrQueueFull = errors.New("sync queue full or stopped")

// SyncQueue provides an abstraction for enqueueing remote sync jobs
type SyncQueue interface {
	EnqueuePush(key string) error
	EnqueueClear() error
}
