package token

// SeedBalance is a test helper that sets an account balance directly when
// using the in-memory ledger. It stands in for the external on-ramp that
// funds user collateral accounts in production.
func SeedBalance(l Ledger, code string, amount uint64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[code] = amount
	}
}
