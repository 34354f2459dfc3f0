package oracle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/synthvault/synthvault/internal/infra"
)

// ErrNoHistory indicates no price points have been recorded for the symbol.
var ErrNoHistory = errors.New("no price history")

// PricePoint is one recorded oracle price.
type PricePoint struct {
	Symbol     string
	Price      uint64
	RecordedAt time.Time
}

// HistoryRepository persists the price time series appended on every oracle update.
type HistoryRepository interface {
	Append(ctx context.Context, p PricePoint) error
	Latest(ctx context.Context, symbol string) (PricePoint, error)
	Range(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error)
}

// PostgresHistory stores price points in PostgreSQL.
type PostgresHistory struct {
	db infra.DB
}

// NewPostgresHistory builds a history repository backed by PostgreSQL.
func NewPostgresHistory(db infra.DB) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// Append inserts a price point.
func (r *PostgresHistory) Append(ctx context.Context, p PricePoint) error {
	_, err := r.db.Exec(ctx, `INSERT INTO price_history (symbol, price, recorded_at) VALUES ($1, $2, $3)`,
		p.Symbol, int64(p.Price), p.RecordedAt.UTC())
	return err
}

// Latest returns the most recent price point for the symbol.
func (r *PostgresHistory) Latest(ctx context.Context, symbol string) (PricePoint, error) {
	var (
		p          PricePoint
		price      int64
		recordedAt time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT symbol, price, recorded_at FROM price_history
        WHERE symbol = $1 ORDER BY recorded_at DESC, id DESC LIMIT 1`, symbol).
		Scan(&p.Symbol, &price, &recordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PricePoint{}, ErrNoHistory
	}
	if err != nil {
		return PricePoint{}, err
	}
	p.Price = uint64(price)
	p.RecordedAt = recordedAt.UTC()
	return p, nil
}

// Range returns price points within [from, to], oldest first.
func (r *PostgresHistory) Range(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error) {
	rows, err := r.db.Query(ctx, `SELECT symbol, price, recorded_at FROM price_history
        WHERE symbol = $1 AND recorded_at BETWEEN $2 AND $3 ORDER BY recorded_at ASC, id ASC`,
		symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var (
			p          PricePoint
			price      int64
			recordedAt time.Time
		)
		if err := rows.Scan(&p.Symbol, &price, &recordedAt); err != nil {
			return nil, err
		}
		p.Price = uint64(price)
		p.RecordedAt = recordedAt.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

// MemoryHistory keeps price points in memory for tests and dev mode.
type MemoryHistory struct {
	mu     sync.RWMutex
	points []PricePoint
}

// NewMemoryHistory constructs an in-memory history repository.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Append stores a price point.
func (r *MemoryHistory) Append(_ context.Context, p PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = append(r.points, p)
	return nil
}

// Latest returns the most recently appended point for the symbol.
func (r *MemoryHistory) Latest(_ context.Context, symbol string) (PricePoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.points) - 1; i >= 0; i-- {
		if r.points[i].Symbol == symbol {
			return r.points[i], nil
		}
	}
	return PricePoint{}, ErrNoHistory
}

// Range returns points within [from, to], oldest first.
func (r *MemoryHistory) Range(_ context.Context, symbol string, from, to time.Time) ([]PricePoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PricePoint
	for _, p := range r.points {
		if p.Symbol != symbol {
			continue
		}
		if p.RecordedAt.Before(from) || p.RecordedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
