package engine

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/synthvault/synthvault/internal/history"
	"github.com/synthvault/synthvault/internal/logging"
	"github.com/synthvault/synthvault/internal/notification"
	"github.com/synthvault/synthvault/internal/oracle"
	"github.com/synthvault/synthvault/internal/position"
	"github.com/synthvault/synthvault/internal/store"
	"github.com/synthvault/synthvault/internal/token"
	"github.com/synthvault/synthvault/internal/vault"
)

type testNotifier struct {
	msgs []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.msgs = append(n.msgs, msg)
	return nil
}

func newTestEngine(t *testing.T, cfg Config, price uint64) (*Engine, *store.Memory, *testNotifier) {
	t.Helper()
	run := store.NewMemory()
	notifier := &testNotifier{}
	eng := New(run, oracle.StaticSource{Value: price}, notifier, logging.Discard(), cfg)
	return eng, run, notifier
}

func seedCollateral(run *store.Memory, user string, amount uint64) {
	token.SeedBalance(run.View().Tokens, token.UserAccount(user, token.CollateralSymbol), amount)
}

func TestInitializeVaultOnce(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	if _, err := eng.InitializeVault(ctx); err != vault.ErrAlreadyInitialized {
		t.Fatalf("expected already initialized, got %v", err)
	}

	pool, err := run.View().Tokens.Balance(ctx, token.VaultAccount(token.CollateralSymbol))
	if err != nil {
		t.Fatalf("pool account missing: %v", err)
	}
	if pool != 0 {
		t.Fatalf("expected empty pool, got %d", pool)
	}
}

func TestDepositCreatesPosition(t *testing.T) {
	eng, run, notifier := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)

	res, err := eng.Deposit(ctx, user, 1_000)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if res.Position.Deposited != 1_000 || res.Position.Minted != 0 {
		t.Fatalf("unexpected position: %+v", res.Position)
	}
	if res.AutoMinted != 0 {
		t.Fatalf("expected no auto-mint, got %d", res.AutoMinted)
	}

	pool, _ := run.View().Tokens.Balance(ctx, token.VaultAccount(token.CollateralSymbol))
	if pool != 1_000 {
		t.Fatalf("expected pool 1000, got %d", pool)
	}
	userBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.CollateralSymbol))
	if userBal != 0 {
		t.Fatalf("expected user balance 0, got %d", userBal)
	}

	if len(notifier.msgs) == 0 || notifier.msgs[0].Kind != notification.KindCollateralDeposited {
		t.Fatalf("expected deposit notification, got %+v", notifier.msgs)
	}
}

func TestDepositAutoMint(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{AutoMintOnDeposit: true}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 2_000)

	res, err := eng.Deposit(ctx, user, 1_000)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if res.AutoMinted != 666 {
		t.Fatalf("expected auto-mint 666, got %d", res.AutoMinted)
	}
	if res.Position.Minted != 666 {
		t.Fatalf("expected minted 666, got %d", res.Position.Minted)
	}

	synBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.SyntheticSymbol))
	if synBal != 666 {
		t.Fatalf("expected synthetic balance 666, got %d", synBal)
	}

	// Second deposit tops the position up to the new ceiling.
	res, err = eng.Deposit(ctx, user, 1_000)
	if err != nil {
		t.Fatalf("second deposit failed: %v", err)
	}
	if res.Position.Deposited != 2_000 {
		t.Fatalf("expected deposited 2000, got %d", res.Position.Deposited)
	}
	if res.AutoMinted != 667 {
		t.Fatalf("expected top-up 667, got %d", res.AutoMinted)
	}
	if res.Position.Minted != 1_333 {
		t.Fatalf("expected minted 1333, got %d", res.Position.Minted)
	}
}

func TestDepositZeroAmount(t *testing.T) {
	eng, _, _ := newTestEngine(t, Config{}, 800_000_000)
	if _, err := eng.Deposit(context.Background(), uuid.NewString(), 0); err != ErrInvalidAmount {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestDepositInsufficientFundsLeavesNoPosition(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}

	if _, err := eng.Deposit(ctx, user, 500); err != token.ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := run.View().Positions.Get(ctx, user); err != position.ErrNotFound {
		t.Fatalf("expected no position, got %v", err)
	}
}

func TestMintEnforcesCollateralFloor(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 150)
	if _, err := eng.Deposit(ctx, user, 150); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	p, err := eng.Mint(ctx, user, user, 100)
	if err != nil {
		t.Fatalf("mint at the floor should succeed: %v", err)
	}
	if p.Minted != 100 {
		t.Fatalf("expected minted 100, got %d", p.Minted)
	}

	if _, err := eng.Mint(ctx, user, user, 1); err != ErrInsufficientCollateral {
		t.Fatalf("expected insufficient collateral, got %v", err)
	}
}

func TestMintByNonOwner(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	owner := uuid.NewString()
	other := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, owner, 1_000)
	if _, err := eng.Deposit(ctx, owner, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	if _, err := eng.Mint(ctx, other, owner, 10); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestMintOverflowLeavesStateUnchanged(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 150)
	if _, err := eng.Deposit(ctx, user, 150); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	if _, err := eng.Mint(ctx, user, user, math.MaxUint64/150+1); err != ErrMathOverflow {
		t.Fatalf("expected math overflow, got %v", err)
	}

	p, err := run.View().Positions.Get(ctx, user)
	if err != nil {
		t.Fatalf("position missing: %v", err)
	}
	if p.Minted != 0 {
		t.Fatalf("expected minted unchanged, got %d", p.Minted)
	}
	synBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.SyntheticSymbol))
	if synBal != 0 {
		t.Fatalf("expected synthetic balance 0, got %d", synBal)
	}
}

func TestTradeBuyExactCost(t *testing.T) {
	eng, run, notifier := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 2_000_000_000)

	res, err := eng.Trade(ctx, user, 1, true)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if res.USDCAmount != 1_200_000_000 {
		t.Fatalf("expected cost 1200000000, got %d", res.USDCAmount)
	}
	if res.Position.Deposited != 1_200_000_000 || res.Position.Minted != 1 {
		t.Fatalf("unexpected position: %+v", res.Position)
	}

	synBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.SyntheticSymbol))
	if synBal != 1 {
		t.Fatalf("expected synthetic balance 1, got %d", synBal)
	}
	userBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.CollateralSymbol))
	if userBal != 800_000_000 {
		t.Fatalf("expected remaining collateral 800000000, got %d", userBal)
	}

	found := false
	for _, msg := range notifier.msgs {
		if msg.Kind == notification.KindTradeExecuted {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected trade notification, got %+v", notifier.msgs)
	}
}

func TestTradeSellRounding(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 2_000_000_000)
	if _, err := eng.Trade(ctx, user, 1, true); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	res, err := eng.Trade(ctx, user, 1, false)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if res.USDCAmount != 533_333_300 {
		t.Fatalf("expected proceeds 533333300, got %d", res.USDCAmount)
	}
	if res.Position.Minted != 0 {
		t.Fatalf("expected minted 0, got %d", res.Position.Minted)
	}
	if res.Position.Deposited != 666_666_700 {
		t.Fatalf("expected deposited 666666700, got %d", res.Position.Deposited)
	}

	userBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.CollateralSymbol))
	if userBal != 800_000_000+533_333_300 {
		t.Fatalf("expected collateral balance %d, got %d", 800_000_000+533_333_300, userBal)
	}
}

func TestTradeSellWithoutBalance(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)
	if _, err := eng.Deposit(ctx, user, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	if _, err := eng.Trade(ctx, user, 1, false); err != ErrInsufficientSyntheticBalance {
		t.Fatalf("expected insufficient synthetic balance, got %v", err)
	}
}

func TestRedeem(t *testing.T) {
	eng, run, notifier := newTestEngine(t, Config{}, 1)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)
	if _, err := eng.Deposit(ctx, user, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := eng.Mint(ctx, user, user, 600); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	res, err := eng.Redeem(ctx, user, 300)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if res.USDCAmount != 200 {
		t.Fatalf("expected payout 200, got %d", res.USDCAmount)
	}
	if res.Position.Deposited != 800 || res.Position.Minted != 300 {
		t.Fatalf("unexpected position: %+v", res.Position)
	}

	userBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.CollateralSymbol))
	if userBal != 200 {
		t.Fatalf("expected collateral balance 200, got %d", userBal)
	}
	synBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.SyntheticSymbol))
	if synBal != 300 {
		t.Fatalf("expected synthetic balance 300, got %d", synBal)
	}

	last := notifier.msgs[len(notifier.msgs)-1]
	if last.Kind != notification.KindRedeemed {
		t.Fatalf("expected redeem notification, got %s", last.Kind)
	}
}

func TestRedeemRollsBackBurnOnFailedPayout(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)
	if _, err := eng.Deposit(ctx, user, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := eng.Mint(ctx, user, user, 666); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// At this price the payout far exceeds the deposited collateral; the
	// burn executes first inside the unit of work and must be rolled back.
	if _, err := eng.Redeem(ctx, user, 666); err != ErrInsufficientCollateral {
		t.Fatalf("expected insufficient collateral, got %v", err)
	}

	synBal, _ := run.View().Tokens.Balance(ctx, token.UserAccount(user, token.SyntheticSymbol))
	if synBal != 666 {
		t.Fatalf("burn not rolled back, synthetic balance %d", synBal)
	}
	p, err := run.View().Positions.Get(ctx, user)
	if err != nil {
		t.Fatalf("position missing: %v", err)
	}
	if p.Deposited != 1_000 || p.Minted != 666 {
		t.Fatalf("position mutated: %+v", p)
	}
}

func TestRedeemMoreThanMinted(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 1)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)
	if _, err := eng.Deposit(ctx, user, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := eng.Mint(ctx, user, user, 300); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := eng.Redeem(ctx, user, 600); err != ErrInsufficientSyntheticBalance {
		t.Fatalf("expected insufficient synthetic balance, got %v", err)
	}
}

func TestCollateralizationInvariantAfterAutoMint(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{AutoMintOnDeposit: true}, 800_000_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 10_000)

	for _, amount := range []uint64{1_000, 37, 4_999} {
		res, err := eng.Deposit(ctx, user, amount)
		if err != nil {
			t.Fatalf("deposit %d failed: %v", amount, err)
		}
		if res.Position.Deposited*100 < res.Position.Minted*150 {
			t.Fatalf("collateral floor violated: %+v", res.Position)
		}
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 1)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)
	if _, err := eng.Deposit(ctx, user, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := eng.Mint(ctx, user, user, 600); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := eng.Redeem(ctx, user, 300); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	records, err := eng.History(ctx, user, 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Kind != history.KindRedeem || records[2].Kind != history.KindDeposit {
		t.Fatalf("unexpected ordering: %+v", records)
	}
}

func TestReport(t *testing.T) {
	eng, run, _ := newTestEngine(t, Config{}, 1_500_000)
	ctx := context.Background()
	user := uuid.NewString()

	if _, err := eng.InitializeVault(ctx); err != nil {
		t.Fatalf("initialize vault: %v", err)
	}
	seedCollateral(run, user, 1_000)
	if _, err := eng.Deposit(ctx, user, 1_000); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := eng.Mint(ctx, user, user, 600); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	rep, err := eng.Report(ctx, user)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if rep.MintedValue != 900 {
		t.Fatalf("expected minted value 900, got %d", rep.MintedValue)
	}
	if rep.RatioBPS != 11_111 {
		t.Fatalf("expected ratio 11111 bps, got %d", rep.RatioBPS)
	}
	if rep.MaxMintable != 666 || rep.Headroom != 66 {
		t.Fatalf("unexpected ceiling: %+v", rep)
	}
}
