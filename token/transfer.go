package token

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/eventlog"
	"github.com/reflect-xyz/go-reflect/fee"
	"github.com/reflect-xyz/go-reflect/ledger"
	"github.com/reflect-xyz/go-reflect/liquidity"
)

// Transfer moves amount base units from sender to recipient, applying the
// fee split unless either party is fee-exempt.
//
// When the contract's accumulated balance has reached the conversion
// threshold, the transfer first triggers a liquidity conversion of that
// previously-accumulated balance, unless the sender is the pool pair or a
// conversion is already running. A failed conversion surfaces as an error
// wrapping liquidity.ErrConversionFailed, but the transfer's own
// accounting is committed regardless; callers distinguish the two with
// errors.Is. Every other error aborts the transfer with no state change.
func (t *Token) Transfer(from, to ledger.Address, amount *uint256.Int) error {
	if from == ledger.ZeroAddress || to == ledger.ZeroAddress {
		return ErrZeroAddress
	}
	if amount.Gt(t.ledger.BalanceOf(from)) {
		return ledger.ErrInsufficientBalance
	}
	if t.maxTx != nil && from != t.owner && amount.Gt(t.maxTx) {
		return ErrTxLimitExceeded
	}

	var convErr error
	if t.shouldConvert(from) {
		convErr = t.convert(t.ledger.BalanceOf(t.contract))
	}

	exempt := t.feeExempt[from] || t.feeExempt[to]
	split := t.fees.Split(amount, exempt)
	if err := t.apply(from, to, amount, split); err != nil {
		return err
	}

	attrs := map[string]string{"gross": amount.Dec()}
	if !split.Tax.IsZero() || !split.Liquidity.IsZero() {
		attrs["tax"] = split.Tax.Dec()
		attrs["liquidity"] = split.Liquidity.Dec()
	}
	t.emit(eventlog.Event{
		Type:       eventlog.TypeTransfer,
		From:       from,
		To:         to,
		Amount:     split.Net,
		Attributes: attrs,
	})
	return convErr
}

// shouldConvert applies the trigger rule: feature enabled, pool attached,
// threshold reached, no conversion already running, and the sender is not
// the pool pair. An incoming trade from the pool must not trigger a
// conversion as part of servicing that same trade.
func (t *Token) shouldConvert(sender ledger.Address) bool {
	if t.controller == nil || !t.swapEnabled || t.controller.InProgress() {
		return false
	}
	if sender == t.pair {
		return false
	}
	bal := t.ledger.BalanceOf(t.contract)
	return !bal.IsZero() && !bal.Lt(t.minTokens)
}

func (t *Token) convert(amount *uint256.Int) error {
	res, err := t.controller.Convert(amount, t.escrow)
	if err != nil {
		return err
	}
	t.emit(eventlog.Event{
		Type:   eventlog.TypeSwapAndLiquify,
		From:   t.contract,
		To:     t.pair,
		Amount: res.TokensSwapped,
		Attributes: map[string]string{
			"tokens_swapped":  res.TokensSwapped.Dec(),
			"asset_received":  res.AssetReceived.Dec(),
			"tokens_supplied": res.TokensSupplied.Dec(),
		},
	})
	return nil
}

// escrow is the fee-free internal movement the controller uses to stage
// contract-held tokens at the pool pair around its external calls.
func (t *Token) escrow(to ledger.Address, amount *uint256.Int) error {
	split := t.fees.Split(amount, true)
	if err := t.apply(t.contract, to, amount, split); err != nil {
		return err
	}
	t.emit(eventlog.Event{
		Type:   eventlog.TypeTransfer,
		From:   t.contract,
		To:     to,
		Amount: amount,
	})
	return nil
}

// apply commits one transfer's ledger deltas. The rate is sampled once
// and reused for every leg so the legs cannot drift against each other
// within a single transfer.
func (t *Token) apply(from, to ledger.Address, amount *uint256.Int, split fee.Split) error {
	rate := t.ledger.Rate()

	grossShares := new(uint256.Int).Mul(amount, rate)
	if err := t.ledger.Debit(from, amount, grossShares); err != nil {
		return err
	}

	netShares := new(uint256.Int).Mul(split.Net, rate)
	t.ledger.Credit(to, split.Net, netShares)

	if !split.Tax.IsZero() {
		taxShares := new(uint256.Int).Mul(split.Tax, rate)
		t.ledger.ApplyTaxShare(split.Tax, taxShares)
	}
	if !split.Liquidity.IsZero() {
		liqShares := new(uint256.Int).Mul(split.Liquidity, rate)
		t.ledger.Credit(t.contract, split.Liquidity, liqShares)
	}
	return nil
}

// Approve sets spender's allowance over owner's balance, replacing any
// prior value.
func (t *Token) Approve(owner, spender ledger.Address, amount *uint256.Int) error {
	if owner == ledger.ZeroAddress || spender == ledger.ZeroAddress {
		return ErrZeroAddress
	}
	t.setAllowance(owner, spender, amount.Clone())
	return nil
}

// Allowance returns spender's remaining allowance over owner's balance.
func (t *Token) Allowance(owner, spender ledger.Address) *uint256.Int {
	if approved, ok := t.allowances[owner]; ok {
		if a, ok := approved[spender]; ok {
			return a.Clone()
		}
	}
	return new(uint256.Int)
}

// TransferFrom moves amount from one account to another on the strength
// of a prior approval, then reduces the allowance by the gross amount.
// The allowance is spent even when the amount is fully fee-exempt, and it
// is spent when the transfer commits with a failed conversion.
func (t *Token) TransferFrom(spender, from, to ledger.Address, amount *uint256.Int) error {
	if spender == ledger.ZeroAddress {
		return ErrZeroAddress
	}
	remaining := t.Allowance(from, spender)
	if amount.Gt(remaining) {
		return ErrInsufficientAllowance
	}
	err := t.Transfer(from, to, amount)
	if err != nil && !errors.Is(err, liquidity.ErrConversionFailed) {
		return err
	}
	t.setAllowance(from, spender, remaining.Sub(remaining, amount))
	return err
}

// IncreaseAllowance adds delta to spender's allowance.
func (t *Token) IncreaseAllowance(owner, spender ledger.Address, delta *uint256.Int) error {
	if owner == ledger.ZeroAddress || spender == ledger.ZeroAddress {
		return ErrZeroAddress
	}
	remaining := t.Allowance(owner, spender)
	t.setAllowance(owner, spender, remaining.Add(remaining, delta))
	return nil
}

// DecreaseAllowance subtracts delta from spender's allowance. Fails with
// ErrAllowanceBelowZero rather than clamping.
func (t *Token) DecreaseAllowance(owner, spender ledger.Address, delta *uint256.Int) error {
	if owner == ledger.ZeroAddress || spender == ledger.ZeroAddress {
		return ErrZeroAddress
	}
	remaining := t.Allowance(owner, spender)
	if delta.Gt(remaining) {
		return ErrAllowanceBelowZero
	}
	t.setAllowance(owner, spender, remaining.Sub(remaining, delta))
	return nil
}

func (t *Token) setAllowance(owner, spender ledger.Address, amount *uint256.Int) {
	approved, ok := t.allowances[owner]
	if !ok {
		approved = make(map[ledger.Address]*uint256.Int)
		t.allowances[owner] = approved
	}
	approved[spender] = amount
	t.emit(eventlog.Event{
		Type:   eventlog.TypeApproval,
		From:   owner,
		To:     spender,
		Amount: amount.Clone(),
	})
}
