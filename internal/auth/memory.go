package auth

import (
	"context"
	"sync"

	"greetly.org/internal/store"
)

var _ UserStore = (*MemoryUserStore)(nil)

// MemoryUserStore keeps accounts in process memory behind one lock.
// Usernames are unique; identifiers start at 1 and grow monotonically.
type MemoryUserStore struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]store.Entity[AuthUser]
	byUsername map[string]int64
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		nextID:     1,
		byID:       make(map[int64]store.Entity[AuthUser]),
		byUsername: make(map[string]int64),
	}
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id int64) (store.Entity[AuthUser], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return store.Entity[AuthUser]{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryUserStore) GetByUsername(ctx context.Context, username string) (store.Entity[AuthUser], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUsername[username]
	if !ok {
		return store.Entity[AuthUser]{}, ErrNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryUserStore) Save(ctx context.Context, user AuthUser) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[user.Username]; ok {
		return 0, ErrAlreadyExists
	}
	id := m.nextID
	m.nextID++
	m.byID[id] = store.Entity[AuthUser]{ID: id, Value: user}
	m.byUsername[user.Username] = id
	return id, nil
}

// Delete removes an account. Sessions already issued for the account keep
// working until their next renewal, at which point the dangling lookup
// logs them out.
func (m *MemoryUserStore) Delete(ctx context.Context, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	delete(m.byUsername, e.Value.Username)
}
