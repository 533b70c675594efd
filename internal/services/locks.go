package services

import "sync"

// keyedLocks hands out one mutex per key so read-modify-write sequences on
// the same wallet or task serialize in process. Entries are never reclaimed;
// the key space is bounded by active users/tasks.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: map[string]*sync.Mutex{}}
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if l, ok := k.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	k.locks[key] = l
	return l
}
