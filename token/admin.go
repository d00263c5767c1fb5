package token

import (
	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/eventlog"
	"github.com/reflect-xyz/go-reflect/ledger"
)

func (t *Token) requireOwner(caller ledger.Address) error {
	if caller != t.owner {
		return ErrNotOwner
	}
	return nil
}

// SetTaxFeePercent sets the tax fee percentage.
func (t *Token) SetTaxFeePercent(caller ledger.Address, percent uint64) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.fees.TaxPercent = percent
	return nil
}

// SetLiquidityFeePercent sets the liquidity fee percentage.
func (t *Token) SetLiquidityFeePercent(caller ledger.Address, percent uint64) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.fees.LiquidityPercent = percent
	return nil
}

// SetMaxTxPercent caps transfers by non-owner senders at percent of the
// supply. The cap is computed once, here, and is not recomputed later.
func (t *Token) SetMaxTxPercent(caller ledger.Address, percent uint64) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	limit := new(uint256.Int).Mul(t.ledger.TotalSupply(), uint256.NewInt(percent))
	t.maxTx = limit.Div(limit, uint256.NewInt(100))
	return nil
}

// SetMinTokensBeforeSwap sets the contract balance that arms a liquidity
// conversion.
func (t *Token) SetMinTokensBeforeSwap(caller ledger.Address, amount *uint256.Int) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.minTokens = amount.Clone()
	t.emit(eventlog.Event{
		Type:   eventlog.TypeMinTokensUpdate,
		Amount: amount.Clone(),
	})
	return nil
}

// SetSwapAndLiquifyEnabled toggles the liquidity feature.
func (t *Token) SetSwapAndLiquifyEnabled(caller ledger.Address, enabled bool) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.swapEnabled = enabled
	return nil
}

// ExcludeFromFee makes an account fee-exempt.
func (t *Token) ExcludeFromFee(caller, account ledger.Address) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.feeExempt[account] = true
	return nil
}

// IncludeInFee removes an account's fee exemption.
func (t *Token) IncludeInFee(caller, account ledger.Address) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	delete(t.feeExempt, account)
	return nil
}

// ExcludeFromReward switches an account to an explicit token balance,
// immune to reflection. The visible balance is unchanged by the switch.
func (t *Token) ExcludeFromReward(caller, account ledger.Address) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	return t.ledger.SetExcluded(account, true)
}

// IncludeInReward returns an account to rate-based accounting. The visible
// balance is unchanged by the switch.
func (t *Token) IncludeInReward(caller, account ledger.Address) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	return t.ledger.SetExcluded(account, false)
}

// Redistribute debits the caller by amount and retires it entirely as a
// tax share, inflating every participating holder's balance with no direct
// recipient. The caller must participate in reflection.
func (t *Token) Redistribute(caller ledger.Address, amount *uint256.Int) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if t.ledger.IsExcluded(caller) {
		return ErrExcludedAccount
	}
	if amount.Gt(t.ledger.BalanceOf(caller)) {
		return ledger.ErrInsufficientBalance
	}
	rate := t.ledger.Rate()
	shares := new(uint256.Int).Mul(amount, rate)
	if err := t.ledger.Debit(caller, amount, shares); err != nil {
		return err
	}
	t.ledger.ApplyTaxShare(amount, shares)
	return nil
}
