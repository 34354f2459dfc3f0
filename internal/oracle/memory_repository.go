package oracle

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	oracle *Oracle
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, o Oracle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.oracle != nil {
		return ErrAlreadyInitialized
	}
	stored := o
	r.oracle = &stored
	return nil
}

func (r *memoryRepository) Get(_ context.Context) (Oracle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.oracle == nil {
		return Oracle{}, ErrNotInitialized
	}
	return *r.oracle, nil
}

func (r *memoryRepository) Update(_ context.Context, o Oracle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.oracle == nil {
		return ErrNotInitialized
	}
	stored := o
	r.oracle = &stored
	return nil
}

// Snapshot captures the repository state and returns a function restoring it.
func (r *memoryRepository) Snapshot() func() {
	r.mu.RLock()
	stored := r.oracle
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.oracle = stored
	}
}
