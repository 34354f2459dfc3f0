package store

import (
	"context"
	"sync"

	"github.com/synthvault/synthvault/internal/history"
	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/position"
	"github.com/synthvault/synthvault/internal/token"
	"github.com/synthvault/synthvault/internal/vault"
)

type snapshotter interface {
	Snapshot() func()
}

// Memory is the in-process runner used by tests and dev mode. Operations
// are serialized by a mutex; rollback restores a snapshot taken on entry.
type Memory struct {
	mu           sync.Mutex
	state        State
	snapshotters []snapshotter
}

// NewMemory builds a runner over fresh in-memory backends.
func NewMemory() *Memory {
	m := &Memory{
		state: State{
			Tokens:    token.NewInMemory(),
			Vaults:    vault.NewMemoryRepository(),
			Oracles:   oracle.NewMemoryRepository(),
			Positions: position.NewMemoryRepository(),
			Trades:    history.NewMemoryRepository(),
		},
	}
	for _, backend := range []any{m.state.Tokens, m.state.Vaults, m.state.Oracles, m.state.Positions, m.state.Trades} {
		if s, ok := backend.(snapshotter); ok {
			m.snapshotters = append(m.snapshotters, s)
		}
	}
	return m
}

// Atomic serializes fn against the shared state, restoring the entry
// snapshot if fn fails.
func (m *Memory) Atomic(ctx context.Context, fn func(ctx context.Context, s State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), 0, len(m.snapshotters))
	for _, s := range m.snapshotters {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(ctx, m.state); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}

// View returns the shared state for plain reads.
func (m *Memory) View() State {
	return m.state
}
