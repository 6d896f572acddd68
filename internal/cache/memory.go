package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process store. Expired entries are dropped lazily on read
// and by Sweep; when MaxEntries is exceeded the oldest insertions go first.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]memoryEntry
	order      []string
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a store bounded to maxEntries (0 means unbounded).
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		items:      make(map[string]memoryEntry),
		order:      make([]string, 0, 128),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, still := m.items[key]; still && !m.now().Before(cur.expiresAt) {
			delete(m.items, key)
			m.removeFromOrder(key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	// Copy so later mutation of the caller's slice cannot change a stored entry.
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[key]; !exists {
		m.order = append(m.order, key)
	}
	m.items[key] = memoryEntry{value: stored, expiresAt: m.now().Add(ttl)}
	m.evictIfNeeded()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweep drops every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	kept := m.order[:0]
	for _, k := range m.order {
		if e, ok := m.items[k]; ok && !now.Before(e.expiresAt) {
			delete(m.items, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	m.order = kept
	return removed
}

// RunSweeper sweeps on every tick until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// must be called with mu held
func (m *Memory) removeFromOrder(key string) {
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

// must be called with mu held
func (m *Memory) evictIfNeeded() {
	if m.maxEntries <= 0 {
		return
	}
	for len(m.items) > m.maxEntries && len(m.order) > 0 {
		victim := m.order[0]
		m.order = m.order[1:]
		delete(m.items, victim)
	}
}
