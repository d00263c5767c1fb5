package prover

import (
	"github.com/consensys/gnark/frontend"
	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/fee"
)

// Circuit names for Register and Prove.
const (
	FeeSplitCircuitName     = "fee_split"
	ConservationCircuitName = "transfer_conservation"
)

// FeeSplitCircuit proves that a published fee split follows the
// truncating integer rule: each fee is amount*percent/100 rounded toward
// zero, and the net is the amount minus both fees. The division is
// expressed as fee*100 + remainder == amount*percent with the remainder
// bounded below 100; the remainders are the only private inputs.
type FeeSplitCircuit struct {
	Amount           frontend.Variable `gnark:",public"`
	TaxPercent       frontend.Variable `gnark:",public"`
	LiquidityPercent frontend.Variable `gnark:",public"`
	Net              frontend.Variable `gnark:",public"`
	Tax              frontend.Variable `gnark:",public"`
	Liquidity        frontend.Variable `gnark:",public"`

	TaxRemainder       frontend.Variable
	LiquidityRemainder frontend.Variable
}

func (c *FeeSplitCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(
		api.Add(api.Mul(c.Tax, 100), c.TaxRemainder),
		api.Mul(c.Amount, c.TaxPercent),
	)
	api.AssertIsLessOrEqual(c.TaxRemainder, 99)

	api.AssertIsEqual(
		api.Add(api.Mul(c.Liquidity, 100), c.LiquidityRemainder),
		api.Mul(c.Amount, c.LiquidityPercent),
	)
	api.AssertIsLessOrEqual(c.LiquidityRemainder, 99)

	api.AssertIsEqual(c.Net, api.Sub(c.Amount, c.Tax, c.Liquidity))
	return nil
}

// FeeSplitAssignment builds the witness for one observed split under the
// given fee configuration.
func FeeSplitAssignment(cfg *fee.Config, amount *uint256.Int, split fee.Split) *FeeSplitCircuit {
	hundred := uint256.NewInt(100)
	taxRem := new(uint256.Int).Mul(amount, uint256.NewInt(cfg.TaxPercent))
	taxRem.Mod(taxRem, hundred)
	liqRem := new(uint256.Int).Mul(amount, uint256.NewInt(cfg.LiquidityPercent))
	liqRem.Mod(liqRem, hundred)

	return &FeeSplitCircuit{
		Amount:             amount.ToBig(),
		TaxPercent:         cfg.TaxPercent,
		LiquidityPercent:   cfg.LiquidityPercent,
		Net:                split.Net.ToBig(),
		Tax:                split.Tax.ToBig(),
		Liquidity:          split.Liquidity.ToBig(),
		TaxRemainder:       taxRem.ToBig(),
		LiquidityRemainder: liqRem.ToBig(),
	}
}

// ConservationCircuit proves that one transfer's token-unit legs conserve
// value: the sender loses exactly the gross amount, the recipient, the
// contract account, and the retired fee total absorb all of it, and the
// three legs sum back to the gross amount. Balances here are the
// token-unit quantities at the rate the transfer was priced at.
type ConservationCircuit struct {
	SenderBefore    frontend.Variable
	RecipientBefore frontend.Variable
	ContractBefore  frontend.Variable
	FeesBefore      frontend.Variable

	SenderAfter    frontend.Variable `gnark:",public"`
	RecipientAfter frontend.Variable `gnark:",public"`
	ContractAfter  frontend.Variable `gnark:",public"`
	FeesAfter      frontend.Variable `gnark:",public"`

	Amount    frontend.Variable `gnark:",public"`
	Net       frontend.Variable `gnark:",public"`
	Tax       frontend.Variable `gnark:",public"`
	Liquidity frontend.Variable `gnark:",public"`
}

func (c *ConservationCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.SenderAfter, api.Sub(c.SenderBefore, c.Amount))
	api.AssertIsEqual(c.RecipientAfter, api.Add(c.RecipientBefore, c.Net))
	api.AssertIsEqual(c.ContractAfter, api.Add(c.ContractBefore, c.Liquidity))
	api.AssertIsEqual(c.FeesAfter, api.Add(c.FeesBefore, c.Tax))
	api.AssertIsEqual(c.Amount, api.Add(c.Net, c.Tax, c.Liquidity))
	return nil
}
