// Package fee computes the tax and liquidity split of a transfer amount.
//
// The split is pure integer arithmetic: each fee is amount*percent/100 with
// division truncating toward zero. Truncation dust is not redistributed;
// that is an accepted, tested policy rather than an accident.
package fee

import "github.com/holiman/uint256"

// Config holds the mutable fee percentages. There is exactly one writer at
// a time by construction, so no locking beyond that discipline is needed.
type Config struct {
	TaxPercent       uint64 // retired from the share pool, redistributed to holders
	LiquidityPercent uint64 // accumulated on the contract account for conversion
}

// Default returns the genesis fee configuration: five percent tax, five
// percent liquidity.
func Default() *Config {
	return &Config{TaxPercent: 5, LiquidityPercent: 5}
}

// Split is the decomposition of a transfer amount into its three legs.
// Net + Tax + Liquidity == the original amount minus truncation dust.
type Split struct {
	Net       *uint256.Int
	Tax       *uint256.Int
	Liquidity *uint256.Int
}

// Split decomposes a transfer amount. When exempt is true (either party of
// the transfer is fee-exempt) the whole amount passes through untaxed.
func (c *Config) Split(amount *uint256.Int, exempt bool) Split {
	if exempt {
		return Split{
			Net:       amount.Clone(),
			Tax:       new(uint256.Int),
			Liquidity: new(uint256.Int),
		}
	}
	hundred := uint256.NewInt(100)
	tax := new(uint256.Int).Mul(amount, uint256.NewInt(c.TaxPercent))
	tax.Div(tax, hundred)
	liq := new(uint256.Int).Mul(amount, uint256.NewInt(c.LiquidityPercent))
	liq.Div(liq, hundred)
	net := new(uint256.Int).Sub(amount, tax)
	net.Sub(net, liq)
	return Split{Net: net, Tax: tax, Liquidity: liq}
}

// Suspend zeroes both percentages and returns a function restoring the
// prior values. Callers defer the restore so the configuration comes back
// on every exit path, including failures mid-conversion.
func (c *Config) Suspend() (restore func()) {
	tax, liq := c.TaxPercent, c.LiquidityPercent
	c.TaxPercent = 0
	c.LiquidityPercent = 0
	return func() {
		c.TaxPercent = tax
		c.LiquidityPercent = liq
	}
}
