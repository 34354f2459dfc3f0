package position

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Position
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Position)}
}

func (r *memoryRepository) Get(_ context.Context, owner string) (Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[owner]
	if !ok {
		return Position{}, ErrNotFound
	}
	return p, nil
}

// Lock is equivalent to Get for the in-memory backend; serialization is
// provided by the store runner's mutex.
func (r *memoryRepository) Lock(ctx context.Context, owner string) (Position, error) {
	return r.Get(ctx, owner)
}

func (r *memoryRepository) Upsert(_ context.Context, p Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[p.Owner] = p
	return nil
}

// Snapshot captures the repository state and returns a function restoring it.
func (r *memoryRepository) Snapshot() func() {
	r.mu.RLock()
	stored := make(map[string]Position, len(r.storage))
	for k, v := range r.storage {
		stored[k] = v
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.storage = stored
	}
}
