package worker

import "sync"

// KeyLocks serializes jobs that touch the same key. LockAll waits for every
// keyed holder and keeps new ones out until released.
type KeyLocks struct {
	all  sync.RWMutex
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLocks() *KeyLocks {
	return &KeyLocks{keys: make(map[string]*keyLock)}
}

// Lock blocks until key is free and returns the matching unlock.
func (l *KeyLocks) Lock(key string) (unlock func()) {
	l.all.RLock()

	l.mu.Lock()
	k, ok := l.keys[key]
	if !ok {
		k = &keyLock{}
		l.keys[key] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()
	return func() {
		k.mu.Unlock()

		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.keys, key)
		}
		l.mu.Unlock()

		l.all.RUnlock()
	}
}

// LockAll excludes every key at once.
func (l *KeyLocks) LockAll() (unlock func()) {
	l.all.Lock()
	return l.all.Unlock
}
