package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/synthvault/synthvault/internal/history"
	"github.com/synthvault/synthvault/internal/notification"
	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/position"
	"github.com/synthvault/synthvault/internal/store"
	"github.com/synthvault/synthvault/internal/token"
	"github.com/synthvault/synthvault/internal/vault"
)

// Config carries the engine behavior knobs.
type Config struct {
	// AutoMintOnDeposit selects deposit variant A: after crediting
	// collateral, mint synthetic supply up to the 150% ceiling. Variant B
	// leaves minting to the explicit mint operation.
	AutoMintOnDeposit bool
}

// Engine implements the collateral/issuance core. Every mutating operation
// runs inside one store unit of work: all token movements and position
// updates commit together or not at all.
type Engine struct {
	run      store.Runner
	prices   oracle.PriceSource
	notifier notification.Notifier
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
}

// New builds an engine over the given runner and price source.
func New(run store.Runner, prices oracle.PriceSource, notifier notification.Notifier, logger *slog.Logger, cfg Config) *Engine {
	return &Engine{
		run:      run,
		prices:   prices,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetNow overrides the clock. Intended for tests.
func (e *Engine) SetNow(now func() time.Time) {
	e.now = now
}

// InitializeVault creates the singleton vault: the record with its fresh
// derivation salt, the pooled collateral account protected by the derived
// capability, and the synthetic mint registered under the same capability.
// Re-invocation fails with vault.ErrAlreadyInitialized.
func (e *Engine) InitializeVault(ctx context.Context) (vault.Vault, error) {
	var created vault.Vault
	err := e.run.Atomic(ctx, func(ctx context.Context, s store.State) error {
		v, err := vault.New(e.now())
		if err != nil {
			return err
		}
		if err := s.Vaults.Create(ctx, v); err != nil {
			return err
		}

		pool := token.VaultAccount(token.CollateralSymbol)
		if err := s.Tokens.EnsureAccount(ctx, pool); err != nil {
			return err
		}
		if err := s.Tokens.ProtectAccount(ctx, pool, v.Authority()); err != nil {
			return err
		}
		if err := s.Tokens.RegisterMint(ctx, token.SyntheticSymbol, v.Authority()); err != nil {
			return err
		}

		created = v
		return nil
	})
	if err != nil {
		return vault.Vault{}, err
	}
	e.logger.Info("vault initialized")
	return created, nil
}

// DepositResult reports the outcome of a deposit.
type DepositResult struct {
	Position position.Position
	// AutoMinted is the synthetic supply issued by deposit variant A; zero
	// under variant B.
	AutoMinted uint64
}

// Deposit moves collateral from the caller into the vault pool and updates
// the caller's position, creating it on first use. Under the auto-mint
// variant it then tops the position up to the supply ceiling.
func (e *Engine) Deposit(ctx context.Context, caller string, amount uint64) (DepositResult, error) {
	if amount == 0 {
		return DepositResult{}, ErrInvalidAmount
	}

	var res DepositResult
	err := e.run.Atomic(ctx, func(ctx context.Context, s store.State) error {
		v, err := s.Vaults.Get(ctx)
		if err != nil {
			return err
		}

		userCollateral := token.UserAccount(caller, token.CollateralSymbol)
		userSynthetic := token.UserAccount(caller, token.SyntheticSymbol)
		if err := s.Tokens.EnsureAccount(ctx, userCollateral); err != nil {
			return err
		}
		if err := s.Tokens.EnsureAccount(ctx, userSynthetic); err != nil {
			return err
		}

		if err := s.Tokens.Transfer(ctx, userCollateral, token.VaultAccount(token.CollateralSymbol), amount, nil); err != nil {
			return err
		}

		p, err := s.Positions.Lock(ctx, caller)
		if errors.Is(err, position.ErrNotFound) {
			p = position.Position{Owner: caller}
		} else if err != nil {
			return err
		}

		if p.Deposited, err = checkedAdd(p.Deposited, amount); err != nil {
			return err
		}
		p.LastActivity = e.now().UTC()

		var mintNow uint64
		if e.cfg.AutoMintOnDeposit {
			ceiling, err := maxMintable(p.Deposited)
			if err != nil {
				return err
			}
			mintNow = saturatingSub(ceiling, p.Minted)
			if mintNow > 0 {
				if err := s.Tokens.MintTo(ctx, token.SyntheticSymbol, userSynthetic, mintNow, v.Authority()); err != nil {
					return err
				}
				if p.Minted, err = checkedAdd(p.Minted, mintNow); err != nil {
					return err
				}
			}
		}

		if err := s.Positions.Upsert(ctx, p); err != nil {
			return err
		}

		if err := s.Trades.Append(ctx, history.Record{
			ID:         uuid.NewString(),
			User:       caller,
			Kind:       history.KindDeposit,
			Amount:     amount,
			USDCAmount: amount,
			ExecutedAt: p.LastActivity,
		}); err != nil {
			return err
		}

		res = DepositResult{Position: p, AutoMinted: mintNow}
		return nil
	})
	if err != nil {
		return DepositResult{}, err
	}

	e.notify(ctx, notification.Message{
		Kind:   notification.KindCollateralDeposited,
		User:   caller,
		Fields: map[string]any{"amount": amount},
	})
	if res.AutoMinted > 0 {
		e.notify(ctx, notification.Message{
			Kind:   notification.KindSyntheticMinted,
			User:   caller,
			Fields: map[string]any{"amount": res.AutoMinted},
		})
	}
	return res, nil
}

// Mint issues synthetic supply against already-deposited collateral. The
// caller must own the position and the position must cover existing plus
// new debt at the 150% floor.
func (e *Engine) Mint(ctx context.Context, caller, owner string, amount uint64) (position.Position, error) {
	if amount == 0 {
		return position.Position{}, ErrInvalidAmount
	}

	var updated position.Position
	err := e.run.Atomic(ctx, func(ctx context.Context, s store.State) error {
		v, err := s.Vaults.Get(ctx)
		if err != nil {
			return err
		}

		p, err := s.Positions.Lock(ctx, owner)
		if err != nil {
			return err
		}
		if p.Owner != caller {
			return ErrUnauthorized
		}

		collateralValue, err := checkedMul(p.Deposited, ratioDen)
		if err != nil {
			return err
		}
		newMinted, err := checkedAdd(p.Minted, amount)
		if err != nil {
			return err
		}
		requiredValue, err := checkedMul(newMinted, ratioNum)
		if err != nil {
			return err
		}
		if collateralValue < requiredValue {
			return ErrInsufficientCollateral
		}

		userSynthetic := token.UserAccount(owner, token.SyntheticSymbol)
		if err := s.Tokens.EnsureAccount(ctx, userSynthetic); err != nil {
			return err
		}
		if err := s.Tokens.MintTo(ctx, token.SyntheticSymbol, userSynthetic, amount, v.Authority()); err != nil {
			return err
		}

		p.Minted = newMinted
		if err := s.Positions.Upsert(ctx, p); err != nil {
			return err
		}

		if err := s.Trades.Append(ctx, history.Record{
			ID:         uuid.NewString(),
			User:       owner,
			Kind:       history.KindMint,
			Amount:     amount,
			ExecutedAt: e.now().UTC(),
		}); err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		return position.Position{}, err
	}

	e.notify(ctx, notification.Message{
		Kind:   notification.KindSyntheticMinted,
		User:   owner,
		Fields: map[string]any{"amount": amount},
	})
	return updated, nil
}

// TradeResult reports an executed protocol-priced trade.
type TradeResult struct {
	IsBuy      bool
	Amount     uint64
	USDCAmount uint64
	Price      uint64
	Position   position.Position
}

// Trade executes a protocol-priced buy or sell of synthetic units at the
// source price. Buys charge collateral at 150% and mint; sells burn and pay
// out at the inverse rate with saturating position decrements.
func (e *Engine) Trade(ctx context.Context, caller string, amount uint64, isBuy bool) (TradeResult, error) {
	if amount == 0 {
		return TradeResult{}, ErrInvalidAmount
	}

	var res TradeResult
	err := e.run.Atomic(ctx, func(ctx context.Context, s store.State) error {
		v, err := s.Vaults.Get(ctx)
		if err != nil {
			return err
		}
		price, err := e.prices.Price(ctx, s.Oracles)
		if err != nil {
			return err
		}

		if isBuy {
			res, err = e.buy(ctx, s, v, caller, amount, price)
		} else {
			res, err = e.sell(ctx, s, v, caller, amount, price)
		}
		return err
	})
	if err != nil {
		return TradeResult{}, err
	}

	e.notify(ctx, notification.Message{
		Kind: notification.KindTradeExecuted,
		User: caller,
		Fields: map[string]any{
			"is_buy":      res.IsBuy,
			"amount":      res.Amount,
			"usdc_amount": res.USDCAmount,
			"price":       res.Price,
		},
	})
	return res, nil
}

func (e *Engine) buy(ctx context.Context, s store.State, v vault.Vault, caller string, amount, price uint64) (TradeResult, error) {
	usdcRequired, err := buyCost(amount, price)
	if err != nil {
		return TradeResult{}, err
	}

	userCollateral := token.UserAccount(caller, token.CollateralSymbol)
	userSynthetic := token.UserAccount(caller, token.SyntheticSymbol)
	if err := s.Tokens.EnsureAccount(ctx, userCollateral); err != nil {
		return TradeResult{}, err
	}
	if err := s.Tokens.EnsureAccount(ctx, userSynthetic); err != nil {
		return TradeResult{}, err
	}

	if err := s.Tokens.Transfer(ctx, userCollateral, token.VaultAccount(token.CollateralSymbol), usdcRequired, nil); err != nil {
		return TradeResult{}, err
	}
	if err := s.Tokens.MintTo(ctx, token.SyntheticSymbol, userSynthetic, amount, v.Authority()); err != nil {
		return TradeResult{}, err
	}

	p, err := s.Positions.Lock(ctx, caller)
	if errors.Is(err, position.ErrNotFound) {
		p = position.Position{Owner: caller}
	} else if err != nil {
		return TradeResult{}, err
	}

	if p.Deposited, err = checkedAdd(p.Deposited, usdcRequired); err != nil {
		return TradeResult{}, err
	}
	if p.Minted, err = checkedAdd(p.Minted, amount); err != nil {
		return TradeResult{}, err
	}
	p.LastActivity = e.now().UTC()

	if err := s.Positions.Upsert(ctx, p); err != nil {
		return TradeResult{}, err
	}
	if err := s.Trades.Append(ctx, history.Record{
		ID:         uuid.NewString(),
		User:       caller,
		Kind:       history.KindBuy,
		Amount:     amount,
		USDCAmount: usdcRequired,
		Price:      price,
		ExecutedAt: p.LastActivity,
	}); err != nil {
		return TradeResult{}, err
	}

	return TradeResult{IsBuy: true, Amount: amount, USDCAmount: usdcRequired, Price: price, Position: p}, nil
}

func (e *Engine) sell(ctx context.Context, s store.State, v vault.Vault, caller string, amount, price uint64) (TradeResult, error) {
	usdcOut, err := sellProceeds(amount, price)
	if err != nil {
		return TradeResult{}, err
	}

	p, err := s.Positions.Lock(ctx, caller)
	if errors.Is(err, position.ErrNotFound) {
		p = position.Position{Owner: caller}
	} else if err != nil {
		return TradeResult{}, err
	}

	if p.Minted < amount {
		return TradeResult{}, ErrInsufficientSyntheticBalance
	}
	if p.Deposited < usdcOut {
		return TradeResult{}, ErrInsufficientCollateral
	}

	userCollateral := token.UserAccount(caller, token.CollateralSymbol)
	userSynthetic := token.UserAccount(caller, token.SyntheticSymbol)
	if err := s.Tokens.Burn(ctx, token.SyntheticSymbol, userSynthetic, amount); err != nil {
		return TradeResult{}, mapSyntheticErr(err)
	}
	if err := s.Tokens.Transfer(ctx, token.VaultAccount(token.CollateralSymbol), userCollateral, usdcOut, v.Authority()); err != nil {
		return TradeResult{}, err
	}

	p.Minted = saturatingSub(p.Minted, amount)
	p.Deposited = saturatingSub(p.Deposited, usdcOut)

	if err := s.Positions.Upsert(ctx, p); err != nil {
		return TradeResult{}, err
	}
	if err := s.Trades.Append(ctx, history.Record{
		ID:         uuid.NewString(),
		User:       caller,
		Kind:       history.KindSell,
		Amount:     amount,
		USDCAmount: usdcOut,
		Price:      price,
		ExecutedAt: e.now().UTC(),
	}); err != nil {
		return TradeResult{}, err
	}

	return TradeResult{IsBuy: false, Amount: amount, USDCAmount: usdcOut, Price: price, Position: p}, nil
}

// RedeemResult reports an executed redemption.
type RedeemResult struct {
	Amount     uint64
	USDCAmount uint64
	Price      uint64
	Position   position.Position
}

// Redeem burns synthetic supply and pays out collateral at the source
// price. The burn happens first; if the payout cannot proceed the whole
// unit of work rolls back, leaving the burn uncommitted.
func (e *Engine) Redeem(ctx context.Context, caller string, amount uint64) (RedeemResult, error) {
	if amount == 0 {
		return RedeemResult{}, ErrInvalidAmount
	}

	var res RedeemResult
	err := e.run.Atomic(ctx, func(ctx context.Context, s store.State) error {
		v, err := s.Vaults.Get(ctx)
		if err != nil {
			return err
		}

		p, err := s.Positions.Lock(ctx, caller)
		if err != nil {
			return err
		}
		if p.Owner != caller {
			return ErrUnauthorized
		}

		price, err := e.prices.Price(ctx, s.Oracles)
		if err != nil {
			return err
		}

		userSynthetic := token.UserAccount(caller, token.SyntheticSymbol)
		if err := s.Tokens.Burn(ctx, token.SyntheticSymbol, userSynthetic, amount); err != nil {
			return mapSyntheticErr(err)
		}

		usdcOut, err := sellProceeds(amount, price)
		if err != nil {
			return err
		}
		if p.Deposited < usdcOut {
			return ErrInsufficientCollateral
		}

		userCollateral := token.UserAccount(caller, token.CollateralSymbol)
		if err := s.Tokens.Transfer(ctx, token.VaultAccount(token.CollateralSymbol), userCollateral, usdcOut, v.Authority()); err != nil {
			return err
		}

		p.Minted = saturatingSub(p.Minted, amount)
		p.Deposited = saturatingSub(p.Deposited, usdcOut)

		if err := s.Positions.Upsert(ctx, p); err != nil {
			return err
		}
		if err := s.Trades.Append(ctx, history.Record{
			ID:         uuid.NewString(),
			User:       caller,
			Kind:       history.KindRedeem,
			Amount:     amount,
			USDCAmount: usdcOut,
			Price:      price,
			ExecutedAt: e.now().UTC(),
		}); err != nil {
			return err
		}

		res = RedeemResult{Amount: amount, USDCAmount: usdcOut, Price: price, Position: p}
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}

	e.notify(ctx, notification.Message{
		Kind: notification.KindRedeemed,
		User: caller,
		Fields: map[string]any{
			"amount":      res.Amount,
			"usdc_amount": res.USDCAmount,
			"price":       res.Price,
		},
	})
	return res, nil
}

func (e *Engine) notify(ctx context.Context, msg notification.Message) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Send(ctx, msg); err != nil {
		e.logger.Warn("send notification", "kind", msg.Kind, "error", err)
	}
}

func mapSyntheticErr(err error) error {
	if errors.Is(err, token.ErrInsufficientFunds) || errors.Is(err, token.ErrAccountNotFound) {
		return ErrInsufficientSyntheticBalance
	}
	return err
}
