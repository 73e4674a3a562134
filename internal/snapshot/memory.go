package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent snapshots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	retain  int
	version int64
	history []*Snapshot
}

// NewMemoryStore keeps up to retain versions; retain <= 0 keeps one.
func NewMemoryStore(retain int) *MemoryStore {
	if retain <= 0 {
		retain = 1
	}
	return &MemoryStore{retain: retain}
}

func (m *MemoryStore) Put(_ context.Context, snap *Snapshot) (*Snapshot, error) {
	stored := snap.Clone()

	m.mu.Lock()
	m.version++
	stored.Version = m.version
	m.history = append(m.history, stored)
	if len(m.history) > m.retain {
		m.history = append([]*Snapshot(nil), m.history[len(m.history)-m.retain:]...)
	}
	m.mu.Unlock()

	return stored.Clone(), nil
}

func (m *MemoryStore) Latest(_ context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.history) == 0 {
		return nil, ErrNoSnapshot
	}
	return m.history[len(m.history)-1].Clone(), nil
}

func (m *MemoryStore) Get(_ context.Context, version int64) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.history {
		if s.Version == version {
			return s.Clone(), nil
		}
	}
	return nil, ErrNotFound
}
