package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/synthvault/synthvault/internal/infra"
)

// PostgresRepository stores records in PostgreSQL.
type PostgresRepository struct {
	db infra.DB
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db infra.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a record.
func (r *PostgresRepository) Append(ctx context.Context, rec Record) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(rec.User)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO trade_history (id, user_id, kind, amount, usdc_amount, price, executed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, rec.Kind, int64(rec.Amount), int64(rec.USDCAmount), int64(rec.Price), rec.ExecutedAt.UTC())
	return err
}

// ListByUser returns a user's records, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, user string, limit int) ([]Record, error) {
	userID, err := uuid.Parse(user)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `SELECT id, user_id, kind, amount, usdc_amount, price, executed_at
        FROM trade_history WHERE user_id = $1 ORDER BY executed_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			id         uuid.UUID
			uid        uuid.UUID
			amount     int64
			usdcAmount int64
			price      int64
			executedAt time.Time
		)
		if err := rows.Scan(&id, &uid, &rec.Kind, &amount, &usdcAmount, &price, &executedAt); err != nil {
			return nil, err
		}
		rec.ID = id.String()
		rec.User = uid.String()
		rec.Amount = uint64(amount)
		rec.USDCAmount = uint64(usdcAmount)
		rec.Price = uint64(price)
		rec.ExecutedAt = executedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
