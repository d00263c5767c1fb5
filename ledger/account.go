package ledger

import "github.com/holiman/uint256"

// Address identifies an account. The zero value is the null account,
// which can never send or receive.
type Address string

// ZeroAddress is the null account.
const ZeroAddress Address = ""

// Account holds the balance bookkeeping for one address.
//
// Every account carries a share balance. For a participating account the
// share balance is authoritative and the visible token balance is derived
// from it at the current rate. For an excluded account the explicit token
// balance is authoritative instead; the share balance is still maintained
// because the rate computation nets excluded holdings out of both supply
// sides (see Ledger.currentSupply).
type Account struct {
	Shares   *uint256.Int
	Tokens   *uint256.Int
	Excluded bool
}

func newAccount() *Account {
	return &Account{
		Shares: new(uint256.Int),
		Tokens: new(uint256.Int),
	}
}

// Participating reports whether the account's balance is derived from
// shares rather than held as explicit tokens.
func (a *Account) Participating() bool {
	return !a.Excluded
}
