package blobstore

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory. It backs the "memory" cache
// backend and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	m.records[name] = slices.Clone(data)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.records, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(context.Context) ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.records))
	for name := range m.records {
		names = append(names, name)
	}
	m.mu.RUnlock()
	slices.Sort(names)
	return names, nil
}

func (m *MemoryStore) Close() error { return nil }
