// Package token assembles the rate ledger, fee engine, and liquidity
// controller into the public surface of a reflection token: the standard
// transfer and approval operations, the reflection-specific views, and the
// privileged configuration operations.
//
// There is no ambient caller identity. Every operation takes the acting
// account explicitly, and privileged operations check it against the owner
// fixed at genesis.
package token

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/eventlog"
	"github.com/reflect-xyz/go-reflect/fee"
	"github.com/reflect-xyz/go-reflect/ledger"
	"github.com/reflect-xyz/go-reflect/liquidity"
)

// Config describes a token at genesis. InitialSupply is in whole tokens
// and is scaled by Decimals into base units. Contract names the token's
// own account, where liquidity fees accumulate between conversions.
type Config struct {
	Name          string
	Symbol        string
	Decimals      uint8
	InitialSupply *uint256.Int
	Owner         ledger.Address
	Contract      ledger.Address
	Sinks         []eventlog.Sink
}

// Token is a reflection token. It is not safe for concurrent use; callers
// serialize operations, and every operation runs to completion before the
// next is accepted.
type Token struct {
	name     string
	symbol   string
	decimals uint8
	owner    ledger.Address
	contract ledger.Address

	ledger     *ledger.Ledger
	fees       *fee.Config
	controller *liquidity.Controller
	pair       ledger.Address

	allowances map[ledger.Address]map[ledger.Address]*uint256.Int
	feeExempt  map[ledger.Address]bool

	maxTx       *uint256.Int // nil until SetMaxTxPercent, meaning no limit
	minTokens   *uint256.Int // contract balance that arms a conversion
	swapEnabled bool

	sinks []eventlog.Sink
}

// New creates a token, crediting the whole supply to the owner. The owner
// and the contract account start fee-exempt. Liquidity conversion starts
// enabled with a threshold of 0.05% of supply, and there is no transfer
// limit until SetMaxTxPercent is called.
func New(cfg Config) (*Token, error) {
	if cfg.Owner == ledger.ZeroAddress || cfg.Contract == ledger.ZeroAddress {
		return nil, fmt.Errorf("%w: owner and contract accounts are required", ErrInvalidConfig)
	}
	if cfg.InitialSupply == nil || cfg.InitialSupply.IsZero() {
		return nil, fmt.Errorf("%w: initial supply must be positive", ErrInvalidConfig)
	}

	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(cfg.Decimals)))
	supply := new(uint256.Int).Mul(cfg.InitialSupply, scale)

	t := &Token{
		name:        cfg.Name,
		symbol:      cfg.Symbol,
		decimals:    cfg.Decimals,
		owner:       cfg.Owner,
		contract:    cfg.Contract,
		ledger:      ledger.New(supply, cfg.Owner),
		fees:        fee.Default(),
		allowances:  make(map[ledger.Address]map[ledger.Address]*uint256.Int),
		feeExempt:   make(map[ledger.Address]bool),
		minTokens:   new(uint256.Int).Div(new(uint256.Int).Mul(supply, uint256.NewInt(5)), uint256.NewInt(10000)),
		swapEnabled: true,
		sinks:       cfg.Sinks,
	}
	t.feeExempt[cfg.Owner] = true
	t.feeExempt[cfg.Contract] = true

	t.emit(eventlog.Event{
		Type:   eventlog.TypeTransfer,
		To:     cfg.Owner,
		Amount: supply,
	})
	return t, nil
}

// AttachPool wires the external router and the pool pair account created
// at genesis by the deployment tooling. Conversions cannot run until a
// pool is attached.
func (t *Token) AttachPool(router liquidity.Router, pair ledger.Address) {
	t.pair = pair
	t.controller = liquidity.NewController(router, t.fees, pair, t.owner)
}

// AddSink registers an event sink.
func (t *Token) AddSink(s eventlog.Sink) {
	t.sinks = append(t.sinks, s)
}

func (t *Token) emit(ev eventlog.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	for _, s := range t.sinks {
		s.Record(ev)
	}
}

// Name returns the token name.
func (t *Token) Name() string { return t.name }

// Symbol returns the token symbol.
func (t *Token) Symbol() string { return t.symbol }

// Decimals returns the number of base-unit digits after the point.
func (t *Token) Decimals() uint8 { return t.decimals }

// TotalSupply returns the fixed supply in base units.
func (t *Token) TotalSupply() *uint256.Int {
	return t.ledger.TotalSupply()
}

// BalanceOf returns the visible balance of an account in base units.
func (t *Token) BalanceOf(a ledger.Address) *uint256.Int {
	return t.ledger.BalanceOf(a)
}

// TotalFees returns the running token-equivalent total of tax fees.
func (t *Token) TotalFees() *uint256.Int {
	return t.ledger.TotalFees()
}

// IsExcludedFromReward reports whether an account holds an explicit token
// balance instead of participating in reflection.
func (t *Token) IsExcludedFromReward(a ledger.Address) bool {
	return t.ledger.IsExcluded(a)
}

// IsExcludedFromFee reports whether an account is fee-exempt.
func (t *Token) IsExcludedFromFee(a ledger.Address) bool {
	return t.feeExempt[a]
}

// ReflectionFromToken converts a token amount to shares at the current
// rate. With deductFees set, the fee shares a real transfer of the same
// size would deduct are subtracted first, previewing a post-fee receipt.
// Fails with ledger.ErrInvalidAmount if amount exceeds the supply.
func (t *Token) ReflectionFromToken(amount *uint256.Int, deductFees bool) (*uint256.Int, error) {
	if amount.Gt(t.ledger.TotalSupply()) {
		return nil, ledger.ErrInvalidAmount
	}
	if !deductFees {
		return t.ledger.SharesForTokens(amount)
	}
	split := t.fees.Split(amount, false)
	return t.ledger.SharesForTokens(split.Net)
}

// TokenFromReflection converts a share amount back to tokens at the
// current rate. Fails with ledger.ErrInvalidAmount if amount exceeds the
// share pool.
func (t *Token) TokenFromReflection(shares *uint256.Int) (*uint256.Int, error) {
	return t.ledger.TokensForShares(shares)
}

// MaxTxAmount returns the transfer cap in base units, or nil when no cap
// has been set.
func (t *Token) MaxTxAmount() *uint256.Int {
	if t.maxTx == nil {
		return nil
	}
	return t.maxTx.Clone()
}

// MinTokensBeforeSwap returns the contract balance that arms a conversion.
func (t *Token) MinTokensBeforeSwap() *uint256.Int {
	return t.minTokens.Clone()
}

// SwapAndLiquifyEnabled reports whether the liquidity feature is on.
func (t *Token) SwapAndLiquifyEnabled() bool {
	return t.swapEnabled
}

// ConversionInProgress reports whether the liquidity controller currently
// holds its re-entrancy guard.
func (t *Token) ConversionInProgress() bool {
	return t.controller != nil && t.controller.InProgress()
}

// Snapshot returns the visible balance of every account the ledger has
// bookkeeping for, keyed by address.
func (t *Token) Snapshot() ledger.Balances {
	return t.ledger.Snapshot()
}
