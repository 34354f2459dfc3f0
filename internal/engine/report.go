package engine

import (
	"context"

	"github.com/synthvault/synthvault/internal/history"
	"github.com/synthvault/synthvault/internal/position"
)

// priceScale is the fixed-point scale of oracle prices (6 decimals).
const priceScale uint64 = 1_000_000

// Position returns the stored position for an owner.
func (e *Engine) Position(ctx context.Context, owner string) (position.Position, error) {
	return e.run.View().Positions.Get(ctx, owner)
}

// History returns the owner's executed operations, newest first.
func (e *Engine) History(ctx context.Context, owner string, limit int) ([]history.Record, error) {
	return e.run.View().Trades.ListByUser(ctx, owner, limit)
}

// CollateralReport is a point-in-time view of a position priced at the
// engine's price source.
type CollateralReport struct {
	Owner       string
	Deposited   uint64
	Minted      uint64
	Price       uint64
	MintedValue uint64
	// RatioBPS is deposited/minted-value in basis points; zero when the
	// position carries no debt.
	RatioBPS uint64
	// MaxMintable is the supply ceiling floor(deposited * 100 / 150);
	// Headroom is how much of it remains unused.
	MaxMintable uint64
	Headroom    uint64
}

// Report computes the collateralization view for an owner.
func (e *Engine) Report(ctx context.Context, owner string) (CollateralReport, error) {
	s := e.run.View()

	p, err := s.Positions.Get(ctx, owner)
	if err != nil {
		return CollateralReport{}, err
	}
	price, err := e.prices.Price(ctx, s.Oracles)
	if err != nil {
		return CollateralReport{}, err
	}

	rep := CollateralReport{
		Owner:     p.Owner,
		Deposited: p.Deposited,
		Minted:    p.Minted,
		Price:     price,
	}

	raw, err := checkedMul(p.Minted, price)
	if err != nil {
		return CollateralReport{}, err
	}
	rep.MintedValue = raw / priceScale

	if rep.MintedValue > 0 {
		scaled, err := checkedMul(p.Deposited, 10_000)
		if err != nil {
			return CollateralReport{}, err
		}
		rep.RatioBPS = scaled / rep.MintedValue
	}

	if rep.MaxMintable, err = maxMintable(p.Deposited); err != nil {
		return CollateralReport{}, err
	}
	rep.Headroom = saturatingSub(rep.MaxMintable, p.Minted)

	return rep, nil
}
