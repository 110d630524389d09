// Package greeting implements the company-scoped greeting resource and the
// access rule protecting it. Greetings carry only their author's identity;
// the company boundary is re-derived from the author's current record at
// decision time.
package greeting

import (
	"context"
	"errors"

	"greetly.org/internal/store"
)

// ErrNotFound indicates the greeting does not exist.
var ErrNotFound = errors.New("greeting: not found")

// Greeting is a message authored by a user.
type Greeting struct {
	AuthorID int64
	Message  string
}

// Repository is the storage contract for greetings.
type Repository interface {
	List(ctx context.Context) ([]store.Entity[Greeting], error)
	Get(ctx context.Context, id int64) (store.Entity[Greeting], error)
	Create(ctx context.Context, g Greeting) (int64, error)
	Delete(ctx context.Context, id int64) error
}

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps greetings in process memory.
type MemoryRepository struct {
	items *store.Memory[Greeting]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: store.NewMemory[Greeting]()}
}

func (r *MemoryRepository) List(ctx context.Context) ([]store.Entity[Greeting], error) {
	return r.items.List(), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id int64) (store.Entity[Greeting], error) {
	e, ok := r.items.Get(id)
	if !ok {
		return store.Entity[Greeting]{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepository) Create(ctx context.Context, g Greeting) (int64, error) {
	return r.items.Create(g), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.items.Delete(id)
	return nil
}
