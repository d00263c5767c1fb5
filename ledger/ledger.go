// Package ledger implements the rate-based balance ledger that underlies a
// reflection token.
//
// Balances have two representations. Participating accounts hold shares, an
// internal unit fixed at genesis as the largest exact multiple of the token
// supply; their visible balance is shares divided by the current rate.
// Excluded accounts hold an explicit token count that the implicit rate-based
// inflation cannot touch. Retiring shares from the total (a tax share) shrinks
// the divisor for everyone still participating, which is what redistributes
// fees to holders without crediting anyone directly.
package ledger

import "github.com/holiman/uint256"

// Ledger is the single authoritative balance state. It has exactly one
// writer at a time by construction; callers serialize operations.
type Ledger struct {
	totalTokens *uint256.Int // fixed at genesis
	totalShares *uint256.Int // monotonically non-increasing
	totalFees   *uint256.Int // token-equivalent tax applied, informational

	accounts map[Address]*Account
	excluded []Address // iteration order for supply adjustment
}

// New creates a ledger with the given token supply, crediting the whole
// share pool to the genesis account.
//
// The share pool is MaxUint256 minus its remainder modulo the supply, so
// that the genesis rate divides exactly.
func New(totalSupply *uint256.Int, genesis Address) *Ledger {
	shares := new(uint256.Int).SetAllOne()
	rem := new(uint256.Int).Mod(shares, totalSupply)
	shares.Sub(shares, rem)

	l := &Ledger{
		totalTokens: totalSupply.Clone(),
		totalShares: shares,
		totalFees:   new(uint256.Int),
		accounts:    make(map[Address]*Account),
	}
	l.account(genesis).Shares.Set(shares)
	return l
}

// account returns the bookkeeping for an address, creating it lazily.
func (l *Ledger) account(a Address) *Account {
	acct, ok := l.accounts[a]
	if !ok {
		acct = newAccount()
		l.accounts[a] = acct
	}
	return acct
}

// TotalSupply returns the fixed token supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return l.totalTokens.Clone()
}

// TotalShares returns the current share pool.
func (l *Ledger) TotalShares() *uint256.Int {
	return l.totalShares.Clone()
}

// TotalFees returns the running token-equivalent total of tax fees applied.
func (l *Ledger) TotalFees() *uint256.Int {
	return l.totalFees.Clone()
}

// currentSupply returns the share and token supplies net of excluded
// holdings. If netting out an excluded account would drive either side
// non-positive, or the share side below the genesis rate floor, the
// unadjusted totals are used instead, guarding against a degenerate rate.
func (l *Ledger) currentSupply() (rSupply, tSupply *uint256.Int) {
	rSupply = l.totalShares.Clone()
	tSupply = l.totalTokens.Clone()
	for _, a := range l.excluded {
		acct := l.accounts[a]
		if acct.Shares.Gt(rSupply) || acct.Tokens.Gt(tSupply) {
			return l.totalShares.Clone(), l.totalTokens.Clone()
		}
		rSupply.Sub(rSupply, acct.Shares)
		tSupply.Sub(tSupply, acct.Tokens)
	}
	floor := new(uint256.Int).Div(l.totalShares, l.totalTokens)
	if rSupply.Lt(floor) {
		return l.totalShares.Clone(), l.totalTokens.Clone()
	}
	return rSupply, tSupply
}

// Rate returns the current shares-per-token conversion rate.
func (l *Ledger) Rate() *uint256.Int {
	rSupply, tSupply := l.currentSupply()
	return rSupply.Div(rSupply, tSupply)
}

// BalanceOf returns the visible token balance of an account. It never fails;
// unknown accounts have a zero balance.
func (l *Ledger) BalanceOf(a Address) *uint256.Int {
	acct, ok := l.accounts[a]
	if !ok {
		return new(uint256.Int)
	}
	if acct.Excluded {
		return acct.Tokens.Clone()
	}
	return new(uint256.Int).Div(acct.Shares, l.Rate())
}

// SharesForTokens converts a token amount to shares at the current rate.
// Fails with ErrInvalidAmount if the amount exceeds the total supply.
func (l *Ledger) SharesForTokens(tokens *uint256.Int) (*uint256.Int, error) {
	if tokens.Gt(l.totalTokens) {
		return nil, ErrInvalidAmount
	}
	return new(uint256.Int).Mul(tokens, l.Rate()), nil
}

// TokensForShares converts a share amount to tokens at the current rate.
// Fails with ErrInvalidAmount if the amount exceeds the share pool.
func (l *Ledger) TokensForShares(shares *uint256.Int) (*uint256.Int, error) {
	if shares.Gt(l.totalShares) {
		return nil, ErrInvalidAmount
	}
	return new(uint256.Int).Div(shares, l.Rate()), nil
}

// Debit removes tokens/shares from an account. Both legs are given
// explicitly so the caller can price every leg of a transfer at one rate.
// For a participating account the share leg is checked and authoritative;
// for an excluded account the token leg is checked and the share leg is
// clamped at zero, since shares are only advisory there.
func (l *Ledger) Debit(a Address, tokens, shares *uint256.Int) error {
	acct := l.account(a)
	if acct.Excluded {
		if tokens.Gt(acct.Tokens) {
			return ErrInsufficientBalance
		}
		acct.Tokens.Sub(acct.Tokens, tokens)
		if shares.Gt(acct.Shares) {
			acct.Shares.Clear()
		} else {
			acct.Shares.Sub(acct.Shares, shares)
		}
		return nil
	}
	if shares.Gt(acct.Shares) {
		return ErrInsufficientBalance
	}
	acct.Shares.Sub(acct.Shares, shares)
	return nil
}

// Credit adds tokens/shares to an account. The share leg is always applied;
// the token leg only lands when the account is excluded.
func (l *Ledger) Credit(a Address, tokens, shares *uint256.Int) {
	acct := l.account(a)
	acct.Shares.Add(acct.Shares, shares)
	if acct.Excluded {
		acct.Tokens.Add(acct.Tokens, tokens)
	}
}

// ApplyTaxShare retires shares from the pool with no recipient and records
// the token-equivalent fee. This is the redistribution mechanism: every
// participating balance is derived against a smaller pool afterwards.
func (l *Ledger) ApplyTaxShare(tokens, shares *uint256.Int) {
	l.totalShares.Sub(l.totalShares, shares)
	l.totalFees.Add(l.totalFees, tokens)
}

// IsExcluded reports whether an account is excluded from reflection.
func (l *Ledger) IsExcluded(a Address) bool {
	acct, ok := l.accounts[a]
	return ok && acct.Excluded
}

// ExcludedAccounts returns the exclusion set in insertion order.
func (l *Ledger) ExcludedAccounts() []Address {
	out := make([]Address, len(l.excluded))
	copy(out, l.excluded)
	return out
}

// SetExcluded moves an account between the participating and excluded
// balance representations. The visible balance is preserved exactly: on
// exclusion the current derived balance is snapshotted into the explicit
// token count, and on inclusion the share balance is re-derived from that
// snapshot at the current rate before the snapshot is cleared.
func (l *Ledger) SetExcluded(a Address, excluded bool) error {
	acct := l.account(a)
	if excluded {
		if acct.Excluded {
			return ErrAlreadyExcluded
		}
		if !acct.Shares.IsZero() {
			tokens, err := l.TokensForShares(acct.Shares)
			if err != nil {
				return err
			}
			acct.Tokens.Set(tokens)
		}
		acct.Excluded = true
		l.excluded = append(l.excluded, a)
		return nil
	}
	if !acct.Excluded {
		return ErrNotExcluded
	}
	for i, e := range l.excluded {
		if e == a {
			l.excluded = append(l.excluded[:i], l.excluded[i+1:]...)
			break
		}
	}
	acct.Excluded = false
	acct.Shares.Mul(acct.Tokens, l.Rate())
	acct.Tokens.Clear()
	return nil
}

// Addresses returns every address the ledger has bookkeeping for.
func (l *Ledger) Addresses() []Address {
	out := make([]Address, 0, len(l.accounts))
	for a := range l.accounts {
		out = append(out, a)
	}
	return out
}
