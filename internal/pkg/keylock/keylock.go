// Package keylock provides string-keyed mutual exclusion. The entitlement
// engine uses it to make its check-then-issue sequence atomic per
// (user, kind), and the notification dispatcher uses it to keep the sweeper
// and direct sends from racing on the same backlog record.
package keylock

import (
	"sync"
)

// KeyLock hands out one mutex per key. Locks are created on first use and
// kept for the lifetime of the KeyLock; the key space here is small
// (user/kind pairs, backlog record ids) so entries are not reaped.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyLock
func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given key, blocking until it is free
func (k *KeyLock) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for the given key
func (k *KeyLock) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *KeyLock) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
