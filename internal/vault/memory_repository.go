package vault

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	vault *Vault
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, v Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vault != nil {
		return ErrAlreadyInitialized
	}
	stored := v
	r.vault = &stored
	return nil
}

func (r *memoryRepository) Get(_ context.Context) (Vault, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.vault == nil {
		return Vault{}, ErrNotInitialized
	}
	return *r.vault, nil
}

// Snapshot captures the repository state and returns a function restoring it.
func (r *memoryRepository) Snapshot() func() {
	r.mu.RLock()
	stored := r.vault
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.vault = stored
	}
}
