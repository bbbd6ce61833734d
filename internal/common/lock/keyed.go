// Package lock provides per-key mutual exclusion. The engine shards all
// session and scoring mutations by user ID; two events for the same user are
// serialized, different users proceed in parallel.
package lock

import "sync"

type Keyed struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Entries are
// kept for the life of the process; one mutex per user is cheap.
func (k *Keyed) Lock(key int64) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

func (k *Keyed) Unlock(key int64) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
