package vault

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/synthvault/synthvault/internal/token"
)

const authorityLabel = "vault-authority"

// Vault is the singleton protocol treasury record. Its pooled collateral
// balance lives in the token ledger under token.VaultAccount; the record
// itself only carries the derivation salt for the signing capability.
type Vault struct {
	Salt      []byte
	CreatedAt time.Time
}

// New creates a vault record with a freshly generated derivation salt.
func New(now time.Time) (Vault, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return Vault{}, fmt.Errorf("generate vault salt: %w", err)
	}
	return Vault{Salt: salt, CreatedAt: now.UTC()}, nil
}

// Authority derives the capability the engine presents to the token ledger
// for pool-originated mints and transfers. The derivation is deterministic
// per vault and the result never leaves the process.
func (v Vault) Authority() token.Capability {
	mac := hmac.New(sha256.New, v.Salt)
	mac.Write([]byte(authorityLabel))
	return mac.Sum(nil)
}
