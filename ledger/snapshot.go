package ledger

import "github.com/holiman/uint256"

// Balances is a point-in-time map of visible token balances. It is the
// working type for conservation checks and what-if bookkeeping: take a
// snapshot, apply hypothetical deltas, and compare against the live ledger
// without touching it.
type Balances map[Address]*uint256.Int

// Snapshot captures the visible balance of every known account.
func (l *Ledger) Snapshot() Balances {
	out := make(Balances, len(l.accounts))
	for a := range l.accounts {
		out[a] = l.BalanceOf(a)
	}
	return out
}

// Copy creates a deep copy of a balance map.
func (b Balances) Copy() Balances {
	if b == nil {
		return nil
	}
	out := make(Balances, len(b))
	for a, v := range b {
		out[a] = v.Clone()
	}
	return out
}

// Apply creates a new balance map by copying the base and overwriting the
// given entries. The originals are not modified.
func (b Balances) Apply(updates Balances) Balances {
	out := b.Copy()
	for a, v := range updates {
		out[a] = v.Clone()
	}
	return out
}

// Get returns the balance for an address, or zero if absent.
func (b Balances) Get(a Address) *uint256.Int {
	if v, ok := b[a]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// Sum returns the total of all balances. Useful for checking supply
// conservation across a sequence of transfers.
func (b Balances) Sum() *uint256.Int {
	total := new(uint256.Int)
	for _, v := range b {
		total.Add(total, v)
	}
	return total
}

// Equal reports whether two balance maps have the same accounts and values.
func (b Balances) Equal(other Balances) bool {
	if len(b) != len(other) {
		return false
	}
	for a, v := range b {
		ov, ok := other[a]
		if !ok || !v.Eq(ov) {
			return false
		}
	}
	return true
}

// Diff returns the entries where other differs from b, with other's values.
// Accounts absent from other appear with a zero value.
func (b Balances) Diff(other Balances) Balances {
	diff := make(Balances)
	for a, ov := range other {
		if v, ok := b[a]; !ok || !v.Eq(ov) {
			diff[a] = ov.Clone()
		}
	}
	for a := range b {
		if _, ok := other[a]; !ok {
			diff[a] = new(uint256.Int)
		}
	}
	return diff
}
