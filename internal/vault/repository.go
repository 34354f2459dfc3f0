package vault

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/synthvault/synthvault/internal/infra"
)

var (
	// ErrAlreadyInitialized indicates the vault record exists; initialization
	// is a one-time operation and never silently overwrites.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrNotInitialized indicates no vault record has been created yet.
	ErrNotInitialized = errors.New("vault not initialized")
)

// Repository persists the singleton vault record.
type Repository interface {
	Create(ctx context.Context, v Vault) error
	Get(ctx context.Context) (Vault, error)
}

// PostgresRepository stores the vault in PostgreSQL.
type PostgresRepository struct {
	db infra.DB
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db infra.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the vault row; the table enforces a single row.
func (r *PostgresRepository) Create(ctx context.Context, v Vault) error {
	tag, err := r.db.Exec(ctx, `INSERT INTO vault (id, salt, created_at) VALUES (1, $1, $2)
        ON CONFLICT (id) DO NOTHING`, v.Salt, v.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyInitialized
	}
	return nil
}

// Get fetches the vault record.
func (r *PostgresRepository) Get(ctx context.Context) (Vault, error) {
	var (
		v         Vault
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT salt, created_at FROM vault WHERE id = 1`).Scan(&v.Salt, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vault{}, ErrNotInitialized
	}
	if err != nil {
		return Vault{}, err
	}
	v.CreatedAt = createdAt.UTC()
	return v, nil
}
