package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synthvault/synthvault/internal/history"
	"github.com/synthvault/synthvault/internal/infra"
	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/position"
	"github.com/synthvault/synthvault/internal/token"
	"github.com/synthvault/synthvault/internal/vault"
)

// Postgres runs each unit of work in one database transaction. Row locks
// taken by the repositories (SELECT ... FOR UPDATE) order concurrent
// operations touching the same records.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres builds a runner over the connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Atomic begins a transaction, runs fn against transaction-scoped
// repositories, and commits only if fn succeeds.
func (p *Postgres) Atomic(ctx context.Context, fn func(ctx context.Context, s State) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(ctx, stateFor(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// View returns pool-backed state for plain reads.
func (p *Postgres) View() State {
	return stateFor(p.pool)
}

func stateFor(db infra.DB) State {
	return State{
		Tokens:    token.NewPostgres(db),
		Vaults:    vault.NewPostgresRepository(db),
		Oracles:   oracle.NewPostgresRepository(db),
		Positions: position.NewPostgresRepository(db),
		Trades:    history.NewPostgresRepository(db),
	}
}
