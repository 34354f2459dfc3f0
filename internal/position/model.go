package position

import (
	"errors"
	"time"
)

// ErrNotFound indicates no position record exists for the user.
var ErrNotFound = errors.New("position not found")

// Position tracks one user's deposited collateral and outstanding synthetic
// supply. Records are created lazily on first deposit or buy and never
// destroyed; balances may reach zero.
type Position struct {
	Owner        string
	Deposited    uint64
	Minted       uint64
	LastActivity time.Time
}
