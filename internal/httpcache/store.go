// Package httpcache keeps recent API responses so that re-running a sync within a
// few minutes does not spend rate limit on an unchanged listing.
package httpcache

import (
	"sync"
	"time"

	"ghsync/internal/log"
)

const DefaultTTL = 5 * time.Minute

// Store is a key/value store whose entries expire. Get reports a miss for expired entries.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// ReadThrough returns the stored value for key, or calls fetch and stores what it
// returns when keep is true. A failing store degrades to calling fetch and is never
// an error of its own.
func ReadThrough(store Store, key string, fetch func() (value []byte, keep bool, err error)) ([]byte, bool, error) {
	value, ok, err := store.Get(key)
	if err != nil {
		logger.Log.Warnf("Cache read for %s failed: %v", key, err)
	} else if ok {
		return value, true, nil
	}

	value, keep, err := fetch()
	if err != nil || !keep {
		return value, false, err
	}
	if err := store.Put(key, value); err != nil {
		logger.Log.Warnf("Cache write for %s failed: %v", key, err)
	}
	return value, false, nil
}

type memoryEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryStore is a Store that lives as long as the process.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || m.now().Sub(entry.storedAt) >= m.ttl {
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, storedAt: m.now()}
	return nil
}
