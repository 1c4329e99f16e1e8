package collections

import (
	"sync"

	"github.com/google/uuid"
)

// Locker hands out one RWMutex per collection. Field mutations hold the write
// side; document commits hold the read side while checking the schema version.
type Locker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.RWMutex
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[uuid.UUID]*sync.RWMutex)}
}

// Lock acquires the write lock for a collection and returns its release func.
func (l *Locker) Lock(collectionID uuid.UUID) func() {
	m := l.get(collectionID)
	m.Lock()
	return m.Unlock
}

// RLock acquires the read lock for a collection and returns its release func.
func (l *Locker) RLock(collectionID uuid.UUID) func() {
	m := l.get(collectionID)
	m.RLock()
	return m.RUnlock
}

func (l *Locker) get(id uuid.UUID) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.RWMutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.RWMutex{}
		l.locks[id] = m
	}
	return m
}

// registryLockKey guards name uniqueness across collections.
var registryLockKey = uuid.Nil
