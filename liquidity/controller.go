package liquidity

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/fee"
	"github.com/reflect-xyz/go-reflect/ledger"
)

var (
	// ErrConversionFailed wraps a failed external swap or add-liquidity
	// call. The enclosing transfer's own accounting is already committed
	// when this surfaces; only the conversion is void.
	ErrConversionFailed = errors.New("liquidity: conversion failed")
)

// State of the controller. The lock is held only while a conversion runs.
type State int

const (
	Idle State = iota
	Converting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Converting:
		return "converting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result reports what one conversion moved.
type Result struct {
	TokensSwapped  *uint256.Int // first half, swapped for the reference asset
	AssetReceived  *uint256.Int // reference-asset proceeds of the swap
	TokensSupplied *uint256.Int // second half, supplied as liquidity
}

// Controller drives conversions of accumulated fee tokens into pool
// liquidity. It is not safe for concurrent use; the token layer serializes
// all operations, and the internal guard exists for re-entrancy, not
// parallelism.
type Controller struct {
	router Router
	fees   *fee.Config
	pair   ledger.Address // pool pair account, destination of escrowed tokens
	owner  ledger.Address // receives the pool-share receipt
	ttl    time.Duration  // deadline slack handed to the router

	state State
}

// NewController wires a controller against a router and the pool pair
// identity fixed at genesis.
func NewController(router Router, fees *fee.Config, pair, owner ledger.Address) *Controller {
	return &Controller{
		router: router,
		fees:   fees,
		pair:   pair,
		owner:  owner,
		ttl:    2 * time.Minute,
		state:  Idle,
	}
}

// State returns the controller state.
func (c *Controller) State() State {
	return c.state
}

// InProgress reports whether a conversion currently holds the guard.
func (c *Controller) InProgress() bool {
	return c.state == Converting
}

// Convert turns amount contract-held tokens into pool liquidity: half is
// swapped for the reference asset, then both halves enter the pool. The
// pool-share receipt goes to the owner, not the contract.
//
// The guard is acquired before any external call and released on every
// exit path, as is the fee suspension. A failed external call surfaces as
// ErrConversionFailed; ledger state already committed by the escrow legs
// stands, mirroring what an on-chain conversion leaves behind when the
// router call is the thing that fails.
func (c *Controller) Convert(amount *uint256.Int, escrow Escrow) (*Result, error) {
	if c.state == Converting {
		// Nested entry from a re-entrant external call.
		return nil, fmt.Errorf("%w: conversion already in progress", ErrConversionFailed)
	}
	c.state = Converting
	defer func() { c.state = Idle }()

	restore := c.fees.Suspend()
	defer restore()

	half := new(uint256.Int).Div(amount, uint256.NewInt(2))
	otherHalf := new(uint256.Int).Sub(amount, half)
	deadline := time.Now().Add(c.ttl)

	if err := escrow(c.pair, half); err != nil {
		return nil, fmt.Errorf("%w: escrow swap leg: %v", ErrConversionFailed, err)
	}
	received, err := c.router.SwapExactTokensForAsset(half, new(uint256.Int), c.pair, deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: swap: %v", ErrConversionFailed, err)
	}

	if err := escrow(c.pair, otherHalf); err != nil {
		return nil, fmt.Errorf("%w: escrow liquidity leg: %v", ErrConversionFailed, err)
	}
	if _, err := c.router.AddLiquidity(otherHalf, received, new(uint256.Int), new(uint256.Int), c.owner, deadline); err != nil {
		return nil, fmt.Errorf("%w: add liquidity: %v", ErrConversionFailed, err)
	}

	return &Result{
		TokensSwapped:  half,
		AssetReceived:  received,
		TokensSupplied: otherHalf,
	}, nil
}
