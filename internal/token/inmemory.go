package token

import (
	"context"
	"fmt"
	"math"
	"sync"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]uint64
	guards   map[string]Capability
	mints    map[string]Capability
}

// NewInMemory creates a concurrency-safe in-memory ledger used by tests and
// dev mode.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[string]uint64),
		guards:   make(map[string]Capability),
		mints:    make(map[string]Capability),
	}
}

func (l *inMemoryLedger) EnsureAccount(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[code]; !exists {
		l.balances[code] = 0
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, code string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, exists := l.balances[code]
	if !exists {
		return 0, ErrAccountNotFound
	}
	return balance, nil
}

func (l *inMemoryLedger) ProtectAccount(_ context.Context, code string, authority Capability) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[code]; !ok {
		return ErrAccountNotFound
	}
	l.guards[code] = append(Capability(nil), authority...)
	return nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, fromCode, toCode string, amount uint64, authority Capability) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if guard, ok := l.guards[fromCode]; ok && !guard.Equal(authority) {
		return ErrInvalidAuthority
	}

	fromBalance, ok := l.balances[fromCode]
	if !ok {
		return ErrAccountNotFound
	}
	toBalance, ok := l.balances[toCode]
	if !ok {
		return ErrAccountNotFound
	}

	if fromBalance < amount {
		return ErrInsufficientFunds
	}
	if toBalance > math.MaxUint64-amount {
		return fmt.Errorf("destination balance overflow")
	}

	l.balances[fromCode] = fromBalance - amount
	l.balances[toCode] = toBalance + amount
	return nil
}

func (l *inMemoryLedger) RegisterMint(_ context.Context, symbol string, authority Capability) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.mints[symbol]; exists {
		return ErrMintExists
	}
	l.mints[symbol] = append(Capability(nil), authority...)
	return nil
}

func (l *inMemoryLedger) MintTo(_ context.Context, symbol, toCode string, amount uint64, authority Capability) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	registered, ok := l.mints[symbol]
	if !ok {
		return ErrMintNotFound
	}
	if !registered.Equal(authority) {
		return ErrInvalidAuthority
	}

	balance, ok := l.balances[toCode]
	if !ok {
		return ErrAccountNotFound
	}
	if balance > math.MaxUint64-amount {
		return fmt.Errorf("destination balance overflow")
	}

	l.balances[toCode] = balance + amount
	return nil
}

func (l *inMemoryLedger) Burn(_ context.Context, symbol, fromCode string, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[symbol]; !ok {
		return ErrMintNotFound
	}

	balance, ok := l.balances[fromCode]
	if !ok {
		return ErrAccountNotFound
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	l.balances[fromCode] = balance - amount
	return nil
}

// Snapshot captures the ledger state and returns a function restoring it.
func (l *inMemoryLedger) Snapshot() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	balances := make(map[string]uint64, len(l.balances))
	for k, v := range l.balances {
		balances[k] = v
	}
	guards := make(map[string]Capability, len(l.guards))
	for k, v := range l.guards {
		guards[k] = v
	}
	mints := make(map[string]Capability, len(l.mints))
	for k, v := range l.mints {
		mints[k] = v
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.balances = balances
		l.guards = guards
		l.mints = mints
	}
}
