package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/synthvault/synthvault/internal/infra"
)

// Repository persists the singleton oracle record.
type Repository interface {
	Create(ctx context.Context, o Oracle) error
	Get(ctx context.Context) (Oracle, error)
	Update(ctx context.Context, o Oracle) error
}

// PostgresRepository stores the oracle in PostgreSQL.
type PostgresRepository struct {
	db infra.DB
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db infra.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the oracle row; the table enforces a single row.
func (r *PostgresRepository) Create(ctx context.Context, o Oracle) error {
	tag, err := r.db.Exec(ctx, `INSERT INTO price_oracle (id, authority, price, status, updated_at)
        VALUES (1, $1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
		o.Authority, int64(o.Price), int16(o.Status), o.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyInitialized
	}
	return nil
}

// Get fetches the oracle record.
func (r *PostgresRepository) Get(ctx context.Context) (Oracle, error) {
	var (
		o         Oracle
		price     int64
		status    int16
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT authority, price, status, updated_at FROM price_oracle WHERE id = 1`).
		Scan(&o.Authority, &price, &status, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Oracle{}, ErrNotInitialized
	}
	if err != nil {
		return Oracle{}, err
	}
	o.Price = uint64(price)
	o.Status = Status(status)
	o.UpdatedAt = updatedAt.UTC()
	return o, nil
}

// Update overwrites the oracle record.
func (r *PostgresRepository) Update(ctx context.Context, o Oracle) error {
	tag, err := r.db.Exec(ctx, `UPDATE price_oracle SET authority = $1, price = $2, status = $3, updated_at = $4 WHERE id = 1`,
		o.Authority, int64(o.Price), int16(o.Status), o.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInitialized
	}
	return nil
}
