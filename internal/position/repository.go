package position

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/synthvault/synthvault/internal/infra"
)

// Repository persists user positions. Lock is Get plus a row lock and is
// what engine operations use inside their transaction; Get serves plain
// reads.
type Repository interface {
	Get(ctx context.Context, owner string) (Position, error)
	Lock(ctx context.Context, owner string) (Position, error)
	Upsert(ctx context.Context, p Position) error
}

// PostgresRepository stores positions in PostgreSQL.
type PostgresRepository struct {
	db infra.DB
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db infra.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches a position by owner.
func (r *PostgresRepository) Get(ctx context.Context, owner string) (Position, error) {
	return r.get(ctx, owner, `SELECT owner, deposited, minted, last_activity FROM positions WHERE owner = $1`)
}

// Lock fetches a position by owner, locking the row for the transaction.
func (r *PostgresRepository) Lock(ctx context.Context, owner string) (Position, error) {
	return r.get(ctx, owner, `SELECT owner, deposited, minted, last_activity FROM positions WHERE owner = $1 FOR UPDATE`)
}

func (r *PostgresRepository) get(ctx context.Context, owner, query string) (Position, error) {
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return Position{}, err
	}

	var (
		p            Position
		id           uuid.UUID
		deposited    int64
		minted       int64
		lastActivity time.Time
	)
	err = r.db.QueryRow(ctx, query, ownerID).Scan(&id, &deposited, &minted, &lastActivity)
	if errors.Is(err, pgx.ErrNoRows) {
		return Position{}, ErrNotFound
	}
	if err != nil {
		return Position{}, err
	}
	p.Owner = id.String()
	p.Deposited = uint64(deposited)
	p.Minted = uint64(minted)
	p.LastActivity = lastActivity.UTC()
	return p, nil
}

// Upsert writes a position record, creating it on first use.
func (r *PostgresRepository) Upsert(ctx context.Context, p Position) error {
	ownerID, err := uuid.Parse(p.Owner)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO positions (owner, deposited, minted, last_activity)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (owner) DO UPDATE SET deposited = $2, minted = $3, last_activity = $4`,
		ownerID, int64(p.Deposited), int64(p.Minted), p.LastActivity.UTC())
	return err
}
