package engine

import "errors"

var (
	// ErrInvalidAmount rejects zero-amount operations before any state is touched.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrUnauthorized indicates the caller identity does not match the
	// position owner.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMathOverflow indicates a checked arithmetic step exceeded the
	// unsigned 64-bit range.
	ErrMathOverflow = errors.New("math overflow")

	// ErrInsufficientCollateral indicates the operation would leave the
	// position under the 150% floor, or the stored collateral cannot cover
	// the payout.
	ErrInsufficientCollateral = errors.New("insufficient collateral")

	// ErrInsufficientSyntheticBalance indicates an attempt to sell or redeem
	// more synthetic supply than the user holds.
	ErrInsufficientSyntheticBalance = errors.New("insufficient synthetic balance")
)
