package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/synthvault/synthvault/internal/infra"
)

// PostgresLedger persists token accounts and mints in PostgreSQL. It is
// constructed over an infra.DB so it works against both a pool and a
// transaction; engine operations always supply a transaction.
type PostgresLedger struct {
	db infra.DB
}

// NewPostgres constructs a Postgres-backed ledger implementation.
func NewPostgres(db infra.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureAccount guarantees an account row exists for the provided code.
func (l *PostgresLedger) EnsureAccount(ctx context.Context, code string) error {
	_, err := l.db.Exec(ctx, `INSERT INTO token_accounts (code, balance) VALUES ($1, 0)
        ON CONFLICT (code) DO NOTHING`, code)
	return err
}

// Balance returns the stored balance for the specified account code.
func (l *PostgresLedger) Balance(ctx context.Context, code string) (uint64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM token_accounts WHERE code = $1`, code).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint64(balance), nil
}

// ProtectAccount stores the capability required to debit the account.
func (l *PostgresLedger) ProtectAccount(ctx context.Context, code string, authority Capability) error {
	tag, err := l.db.Exec(ctx, `UPDATE token_accounts SET authority = $2 WHERE code = $1`, code, []byte(authority))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Transfer moves amount between two accounts, locking both rows first. A
// protected source account requires the matching capability.
func (l *PostgresLedger) Transfer(ctx context.Context, fromCode, toCode string, amount uint64, authority Capability) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	// Lock in lexical order so concurrent transfers cannot deadlock.
	first, second := fromCode, toCode
	if second < first {
		first, second = second, first
	}
	if _, err := l.lockBalance(ctx, first); err != nil {
		return err
	}
	if _, err := l.lockBalance(ctx, second); err != nil {
		return err
	}

	var guard []byte
	if err := l.db.QueryRow(ctx, `SELECT authority FROM token_accounts WHERE code = $1`, fromCode).Scan(&guard); err != nil {
		return err
	}
	if guard != nil && !Capability(guard).Equal(authority) {
		return ErrInvalidAuthority
	}

	fromBalance, err := l.Balance(ctx, fromCode)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientFunds
	}

	if _, err := l.db.Exec(ctx, `UPDATE token_accounts SET balance = balance - $2 WHERE code = $1`, fromCode, int64(amount)); err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `UPDATE token_accounts SET balance = balance + $2 WHERE code = $1`, toCode, int64(amount))
	return err
}

// RegisterMint stores the authority capability for a token symbol.
func (l *PostgresLedger) RegisterMint(ctx context.Context, symbol string, authority Capability) error {
	tag, err := l.db.Exec(ctx, `INSERT INTO token_mints (symbol, authority) VALUES ($1, $2)
        ON CONFLICT (symbol) DO NOTHING`, symbol, []byte(authority))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMintExists
	}
	return nil
}

// MintTo credits freshly minted supply after verifying the presented capability.
func (l *PostgresLedger) MintTo(ctx context.Context, symbol, toCode string, amount uint64, authority Capability) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	var registered []byte
	err := l.db.QueryRow(ctx, `SELECT authority FROM token_mints WHERE symbol = $1`, symbol).Scan(&registered)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMintNotFound
	}
	if err != nil {
		return err
	}
	if !Capability(registered).Equal(authority) {
		return ErrInvalidAuthority
	}

	if _, err := l.lockBalance(ctx, toCode); err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `UPDATE token_accounts SET balance = balance + $2 WHERE code = $1`, toCode, int64(amount))
	return err
}

// Burn debits supply from the holder's account.
func (l *PostgresLedger) Burn(ctx context.Context, symbol, fromCode string, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	var exists bool
	if err := l.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM token_mints WHERE symbol = $1)`, symbol).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrMintNotFound
	}

	balance, err := l.lockBalance(ctx, fromCode)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	_, err = l.db.Exec(ctx, `UPDATE token_accounts SET balance = balance - $2 WHERE code = $1`, fromCode, int64(amount))
	return err
}

func (l *PostgresLedger) lockBalance(ctx context.Context, code string) (uint64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM token_accounts WHERE code = $1 FOR UPDATE`, code).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint64(balance), nil
}
