package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/fee"
	"github.com/reflect-xyz/go-reflect/prover"
)

func prove(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	amount := fs.Uint64("amount", 10_000, "Transfer amount in whole tokens")
	decimals := fs.Uint64("decimals", 6, "Token decimals")
	taxFee := fs.Uint64("tax", 5, "Tax fee percent")
	liqFee := fs.Uint64("liquidity", 5, "Liquidity fee percent")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: reflect prove [options]

Compute a fee split, generate a Groth16 proof that it follows the
truncating integer rule, and verify the proof.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  reflect prove --amount 10000 --tax 5 --liquidity 5
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(*decimals))
	units := new(uint256.Int).Mul(uint256.NewInt(*amount), scale)

	cfg := &fee.Config{TaxPercent: *taxFee, LiquidityPercent: *liqFee}
	split := cfg.Split(units, false)

	fmt.Println("=== Fee Split ===")
	fmt.Printf("  amount:    %s\n", units.Dec())
	fmt.Printf("  net:       %s\n", split.Net.Dec())
	fmt.Printf("  tax:       %s\n", split.Tax.Dec())
	fmt.Printf("  liquidity: %s\n", split.Liquidity.Dec())

	p := prover.New()
	fmt.Println("\nCompiling circuit and running setup...")
	if err := p.Register(prover.FeeSplitCircuitName, &prover.FeeSplitCircuit{}); err != nil {
		return fmt.Errorf("register circuit: %w", err)
	}

	assignment := prover.FeeSplitAssignment(cfg, units, split)
	proof, err := p.Prove(prover.FeeSplitCircuitName, assignment)
	if err != nil {
		return fmt.Errorf("prove: %w", err)
	}
	if err := p.Verify(prover.FeeSplitCircuitName, assignment); err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	fmt.Println("\n=== Proof ===")
	fmt.Printf("  circuit:     %s\n", proof.CircuitName)
	fmt.Printf("  constraints: %d\n", proof.Constraints)
	fmt.Printf("  proof size:  %d bytes\n", len(proof.Data))
	fmt.Println("  public inputs:")
	for _, in := range proof.PublicInputs {
		fmt.Printf("    %s\n", in)
	}
	fmt.Println("\nProof verified")
	return nil
}
