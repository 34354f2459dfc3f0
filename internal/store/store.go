// Package store bundles the protocol's persistent records behind an atomic
// unit of work. Engine operations run inside Atomic so every read and write
// of one operation commits or rolls back together; nothing partial is ever
// visible to other operations.
package store

import (
	"context"

	"github.com/synthvault/synthvault/internal/history"
	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/position"
	"github.com/synthvault/synthvault/internal/token"
	"github.com/synthvault/synthvault/internal/vault"
)

// State is the set of records an engine operation may touch.
type State struct {
	Tokens    token.Ledger
	Vaults    vault.Repository
	Oracles   oracle.Repository
	Positions position.Repository
	Trades    history.Repository
}

// Runner executes functions against State with all-or-nothing semantics.
type Runner interface {
	// Atomic runs fn in one unit of work. If fn returns an error every
	// mutation it performed is rolled back.
	Atomic(ctx context.Context, fn func(ctx context.Context, s State) error) error

	// View returns non-transactional State for plain reads.
	View() State
}
