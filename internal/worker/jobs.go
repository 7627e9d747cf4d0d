package worker

import (
	"context"
	"fmt"

	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/repository"
)

// PushCardSetJob copies the current local state of one card set to the
// remote store. A set missing locally is deleted remotely. Jobs sharing
// Locks push one key at a time, so the last one to run for a key leaves the
// remote at the latest local state.
type PushCardSetJob struct {
	Local  repository.CardStore
	Remote repository.CardStore
	Key    string
	Locks  *KeyLocks
}

func (j *PushCardSetJob) Name() string { return "push_card_set" }

func (j *PushCardSetJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("key", j.Key)
	if j.Locks != nil {
		defer j.Locks.Lock(j.Key)()
	}

	exists, err := j.Local.Exists(ctx, j.Key)
	if err != nil {
		return fmt.Errorf("check local card set: %w", err)
	}
	if !exists {
		log.Debug("card set gone locally, deleting remote copy")
		if err := j.Remote.Delete(ctx, j.Key); err != nil {
			return fmt.Errorf("delete remote card set: %w", err)
		}
		return nil
	}

	cards, err := j.Local.Load(ctx, j.Key)
	if err != nil {
		return fmt.Errorf("load local card set: %w", err)
	}
	if err := j.Remote.Save(ctx, j.Key, cards); err != nil {
		return fmt.Errorf("save remote card set: %w", err)
	}
	log.Debug("pushed %d cards to remote", len(cards))
	return nil
}

// ClearRemoteJob empties the remote store.
type ClearRemoteJob struct {
	Remote repository.CardStore
	Locks  *KeyLocks
}

func (j *ClearRemoteJob) Name() string { return "clear_remote" }

func (j *ClearRemoteJob) Run(ctx context.Context) error {
	if j.Locks != nil {
		defer j.Locks.LockAll()()
	}
	if err := j.Remote.Clear(ctx); err != nil {
		return fmt.Errorf("clear remote store: %w", err)
	}
	return nil
}
