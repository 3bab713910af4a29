package cache

import (
	"context"
	"sync"
	"time"
)

// maxMemoryEntries bounds the in-process cache; expired entries are swept
// once the limit is reached.
const maxMemoryEntries = 4096

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Repository with per-entry expiry.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryCache returns an empty cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if m.ttl > 0 && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.data) >= maxMemoryEntries {
		m.sweep(now)
	}
	if len(m.data) >= maxMemoryEntries {
		// Still full of live entries: start over rather than grow unbounded.
		m.data = make(map[string]memoryEntry)
	}
	m.data[key] = memoryEntry{value: value, expiresAt: now.Add(m.ttl)}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryCache) sweep(now time.Time) {
	for key, entry := range m.data {
		if !now.Before(entry.expiresAt) {
			delete(m.data, key)
		}
	}
}
