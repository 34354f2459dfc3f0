package oracle

import (
	"context"
	"time"
)

// PriceSource supplies the execution price for trade and redeem paths. The
// engine asks the source inside its atomic unit of work, passing the
// transaction-scoped repository.
type PriceSource interface {
	Price(ctx context.Context, repo Repository) (uint64, error)
}

// StaticSource returns a fixed placeholder price. It reproduces the
// bootstrap behavior used before the live feed integration and must not be
// used in production.
type StaticSource struct {
	Value uint64
}

// Price returns the configured constant.
func (s StaticSource) Price(_ context.Context, _ Repository) (uint64, error) {
	return s.Value, nil
}

// LiveSource reads the stored oracle and refuses prices that are not in
// Trading status, are zero, or exceed the configured maximum age.
type LiveSource struct {
	// MaxAge bounds how old the last update may be. Zero disables the check.
	MaxAge time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Price returns the live oracle price after status and staleness checks.
func (s LiveSource) Price(ctx context.Context, repo Repository) (uint64, error) {
	o, err := repo.Get(ctx)
	if err != nil {
		return 0, err
	}
	if o.Status != StatusTrading || o.Price == 0 {
		return 0, ErrPriceUnavailable
	}
	if s.MaxAge > 0 {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		if now().UTC().Sub(o.UpdatedAt) > s.MaxAge {
			return 0, ErrPriceStale
		}
	}
	return o.Price, nil
}
