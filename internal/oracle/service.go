package oracle

import (
	"context"
	"log/slog"
	"time"

	"github.com/synthvault/synthvault/internal/token"
)

// Service manages the oracle lifecycle: one-time initialization,
// authority-gated price updates, and cached reads.
type Service struct {
	repo    Repository
	history HistoryRepository
	cache   *Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds an oracle service. cache may be nil.
func NewService(repo Repository, history HistoryRepository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		history: history,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// SetNow overrides the clock. Intended for tests.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// Initialize creates the oracle record with the caller as authority. Fails
// with ErrAlreadyInitialized on re-invocation.
func (s *Service) Initialize(ctx context.Context, authority string) (Oracle, error) {
	o := Oracle{
		Authority: authority,
		Price:     0,
		Status:    StatusUnknown,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return Oracle{}, err
	}
	s.logger.Info("oracle initialized", "authority", authority)
	return o, nil
}

// UpdatePrice pushes a new reference price. Only the registered authority
// may call; the update stamps the clock, flips status to Trading, appends
// to the price history, and refreshes the cache. No bounds are applied to
// newPrice; downstream consumers gate on status and plausibility.
func (s *Service) UpdatePrice(ctx context.Context, caller string, newPrice uint64) (Oracle, error) {
	o, err := s.repo.Get(ctx)
	if err != nil {
		return Oracle{}, err
	}
	if o.Authority != caller {
		return Oracle{}, ErrUnauthorized
	}

	o.Price = newPrice
	o.Status = StatusTrading
	o.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, o); err != nil {
		return Oracle{}, err
	}

	if err := s.history.Append(ctx, PricePoint{
		Symbol:     token.SyntheticSymbol,
		Price:      newPrice,
		RecordedAt: o.UpdatedAt,
	}); err != nil {
		s.logger.Warn("append price history", "error", err)
	}
	s.cache.Set(ctx, o)

	s.logger.Info("oracle price updated", "price", newPrice)
	return o, nil
}

// Read returns the current oracle snapshot, serving from the cache when
// possible.
func (s *Service) Read(ctx context.Context) (Oracle, error) {
	if o, ok := s.cache.Get(ctx); ok {
		return o, nil
	}
	o, err := s.repo.Get(ctx)
	if err != nil {
		return Oracle{}, err
	}
	s.cache.Set(ctx, o)
	return o, nil
}

// History returns recorded price points for the synthetic symbol within [from, to].
func (s *Service) History(ctx context.Context, from, to time.Time) ([]PricePoint, error) {
	return s.history.Range(ctx, token.SyntheticSymbol, from, to)
}
