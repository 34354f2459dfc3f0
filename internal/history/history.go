package history

import (
	"context"
	"time"
)

// Record kinds mirror the engine operations that produce them.
const (
	KindDeposit = "deposit"
	KindMint    = "mint"
	KindBuy     = "buy"
	KindSell    = "sell"
	KindRedeem  = "redeem"
)

// Record is one executed engine operation, kept for per-user activity
// queries. Price is zero for operations that do not consult the oracle.
type Record struct {
	ID         string
	User       string
	Kind       string
	Amount     uint64
	USDCAmount uint64
	Price      uint64
	ExecutedAt time.Time
}

// Repository persists executed-operation records.
type Repository interface {
	Append(ctx context.Context, rec Record) error
	ListByUser(ctx context.Context, user string, limit int) ([]Record, error)
}
