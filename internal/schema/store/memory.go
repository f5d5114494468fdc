package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	data sync.Map
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put stores a copy of data under name.
func (m *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	m.data.Store(name, append([]byte(nil), data...))
	return nil
}

// Get returns a copy of the document stored under name.
func (m *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	value, ok := m.data.Load(name)
	if !ok {
		return nil, ErrNotFound{Name: name}
	}
	return append([]byte(nil), value.([]byte)...), nil
}

// Delete removes name.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	if _, loaded := m.data.LoadAndDelete(name); !loaded {
		return ErrNotFound{Name: name}
	}
	return nil
}

// List returns the stored names, sorted.
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var names []string
	m.data.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
