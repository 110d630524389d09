// Package store provides the storage primitive shared by the user and
// greeting stores: a store-assigned numeric identity paired with an owned
// value. Ownership checks across the service compare these identities
// without depending on storage internals.
package store

import (
	"sort"
	"sync"
)

// Entity pairs a storage-assigned identity with a stored value.
type Entity[T any] struct {
	ID    int64
	Value T
}

// Memory is a mutex-guarded in-memory store. Identifiers are assigned
// monotonically starting at 1 and are never reused.
type Memory[T any] struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Entity[T]
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		nextID: 1,
		items:  make(map[int64]Entity[T]),
	}
}

// Create stores the value and returns its assigned identity.
func (m *Memory[T]) Create(value T) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.items[id] = Entity[T]{ID: id, Value: value}
	return id
}

// Get returns the entity with the given identity, if present.
func (m *Memory[T]) Get(id int64) (Entity[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[id]
	return e, ok
}

// Delete removes the entity with the given identity. Deleting an absent
// identity is a no-op.
func (m *Memory[T]) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
}

// List returns all entities ordered by identity.
func (m *Memory[T]) List() []Entity[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entity[T], 0, len(m.items))
	for _, e := range m.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
