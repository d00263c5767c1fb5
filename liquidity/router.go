// Package liquidity converts fee tokens accumulated on the contract account
// into pool liquidity through an external exchange router.
//
// The conversion is a two-step sequence: swap half of the accumulated tokens
// for the reference asset, then supply the other half together with the
// proceeds as liquidity. A scoped re-entrancy guard keeps a nested call
// (for example the router re-entering the token mid-swap) from starting a
// second conversion, and fees are suspended for the duration so the
// conversion's own transfers are not taxed recursively.
package liquidity

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/ledger"
)

// Router is the external exchange collaborator. Both calls are opaque and
// may fail; slippage validation is the router's business, which is why the
// controller passes zero minimums.
type Router interface {
	// SwapExactTokensForAsset swaps exactly amountIn ledger tokens for the
	// reference asset and returns the proceeds credited to recipient.
	SwapExactTokensForAsset(amountIn, amountOutMin *uint256.Int, recipient ledger.Address, deadline time.Time) (*uint256.Int, error)

	// AddLiquidity supplies tokenAmount ledger tokens and assetAmount of
	// the reference asset to the pool and returns the pool-share receipt
	// minted to recipient.
	AddLiquidity(tokenAmount, assetAmount, tokenMin, assetMin *uint256.Int, recipient ledger.Address, deadline time.Time) (*uint256.Int, error)
}

// Escrow moves tokens out of the contract account toward the pool. The
// token layer provides it as a fee-free internal transfer so conversion
// legs cannot recurse into the fee engine.
type Escrow func(to ledger.Address, amount *uint256.Int) error
