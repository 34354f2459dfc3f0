package token

import (
	"context"
	"crypto/hmac"
	"errors"
	"strings"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks balance to
	// cover a requested transfer or burn.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAuthority indicates a mint or burn was attempted without the
	// capability registered for the mint.
	ErrInvalidAuthority = errors.New("invalid mint authority")

	// ErrAccountNotFound indicates the referenced account was never created.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMintNotFound indicates the referenced mint was never registered.
	ErrMintNotFound = errors.New("mint not found")

	// ErrMintExists indicates an attempt to register a mint twice.
	ErrMintExists = errors.New("mint already registered")
)

const (
	// CollateralSymbol is the stable deposit asset backing issuance.
	CollateralSymbol = "USDC"
	// SyntheticSymbol is the protocol-issued token tracking the external asset.
	SyntheticSymbol = "sEQ"
)

// Capability is an opaque signing credential presented to the ledger to
// authorize mints. It is derived, never user-supplied.
type Capability []byte

// Equal compares capabilities in constant time.
func (c Capability) Equal(other Capability) bool {
	return hmac.Equal(c, other)
}

// UserAccount returns the ledger account code holding a user's balance of
// the given token symbol.
func UserAccount(userID, symbol string) string {
	return "user:" + userID + ":" + strings.ToLower(symbol)
}

// VaultAccount returns the ledger account code for the protocol pool of the
// given token symbol.
func VaultAccount(symbol string) string {
	return "vault:" + strings.ToLower(symbol)
}

// Ledger is the token transfer subsystem consumed by the issuance engine.
// Every call is atomic on its own; when backed by Postgres the caller is
// expected to supply a transaction-scoped DB so a whole engine operation
// commits or rolls back as one unit.
//
// Accounts may be protected with a capability. Debiting a protected account
// requires presenting that capability; this is how the vault pool moves
// funds out without a user signature. Unprotected accounts rely on the
// calling layer's owner authorization.
type Ledger interface {
	EnsureAccount(ctx context.Context, code string) error
	ProtectAccount(ctx context.Context, code string, authority Capability) error
	Balance(ctx context.Context, code string) (uint64, error)
	Transfer(ctx context.Context, fromCode, toCode string, amount uint64, authority Capability) error
	RegisterMint(ctx context.Context, symbol string, authority Capability) error
	MintTo(ctx context.Context, symbol, toCode string, amount uint64, authority Capability) error
	Burn(ctx context.Context, symbol, fromCode string, amount uint64) error
}
