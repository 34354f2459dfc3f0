package history

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Append(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, user string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var out []Record
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].User == user {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

// Snapshot captures the repository state and returns a function restoring it.
func (r *memoryRepository) Snapshot() func() {
	r.mu.RLock()
	stored := make([]Record, len(r.records))
	copy(stored, r.records)
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.records = stored
	}
}
