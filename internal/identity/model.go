package identity

import "time"

// User represents a registered protocol participant. The ID is the caller
// identity that engine authorization compares against position owners and
// the oracle authority.
type User struct {
	ID             string
	Address        string
	PassphraseHash []byte
	CreatedAt      time.Time
}

// Credentials carries a login or registration request.
type Credentials struct {
	Address    string
	Passphrase string
}
