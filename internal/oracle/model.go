package oracle

import (
	"errors"
	"time"
)

var (
	// ErrUnauthorized indicates the caller is not the registered oracle authority.
	ErrUnauthorized = errors.New("caller is not the oracle authority")

	// ErrAlreadyInitialized indicates the oracle record exists already.
	ErrAlreadyInitialized = errors.New("oracle already initialized")

	// ErrNotInitialized indicates the oracle record has not been created yet.
	ErrNotInitialized = errors.New("oracle not initialized")

	// ErrPriceUnavailable indicates the oracle is not in Trading status.
	ErrPriceUnavailable = errors.New("oracle price unavailable")

	// ErrPriceStale indicates the last update is older than the configured maximum age.
	ErrPriceStale = errors.New("oracle price stale")
)

// Status reflects the oracle lifecycle: never updated, live, or disabled.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusTrading
	StatusHalted
)

func (s Status) String() string {
	switch s {
	case StatusTrading:
		return "trading"
	case StatusHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Oracle is the singleton price record for the tracked asset. Price is a
// fixed-point value with 6 decimal places, denominated in collateral units.
type Oracle struct {
	Authority string
	Price     uint64
	Status    Status
	UpdatedAt time.Time
}
