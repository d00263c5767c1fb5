package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/eventlog"
	"github.com/reflect-xyz/go-reflect/journal"
	"github.com/reflect-xyz/go-reflect/ledger"
	"github.com/reflect-xyz/go-reflect/liquidity"
	"github.com/reflect-xyz/go-reflect/token"
)

// simRouter stands in for the external exchange: swaps return half the
// input as the reference asset, liquidity additions always succeed.
type simRouter struct {
	swaps int
	adds  int
}

func (r *simRouter) SwapExactTokensForAsset(amountIn, amountOutMin *uint256.Int, recipient ledger.Address, deadline time.Time) (*uint256.Int, error) {
	r.swaps++
	return new(uint256.Int).Div(amountIn, uint256.NewInt(2)), nil
}

func (r *simRouter) AddLiquidity(tokenAmount, assetAmount, tokenMin, assetMin *uint256.Int, recipient ledger.Address, deadline time.Time) (*uint256.Int, error) {
	r.adds++
	return uint256.NewInt(1), nil
}

var _ liquidity.Router = (*simRouter)(nil)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	supply := fs.Uint64("supply", 1_000_000, "Initial supply in whole tokens")
	taxFee := fs.Uint64("tax", 5, "Tax fee percent")
	liqFee := fs.Uint64("liquidity", 5, "Liquidity fee percent")
	holders := fs.Int("holders", 4, "Number of trading accounts")
	rounds := fs.Int("rounds", 25, "Trading rounds; each round every holder sends a tenth of its balance onward")
	logOut := fs.String("log", "", "Write the event log as JSON Lines")
	journalPath := fs.String("journal", "", "Persist events to a SQLite journal")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: reflect simulate [options]

Run a deterministic trading scenario: the owner funds a ring of holders,
who then trade in rounds while fees redistribute and accumulate for
liquidity conversion.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Default scenario
  reflect simulate

  # Heavier fees, more rounds, keep the log
  reflect simulate --tax 8 --liquidity 8 --rounds 100 --log events.jsonl
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *holders < 2 {
		return fmt.Errorf("--holders must be at least 2")
	}

	const (
		owner    = ledger.Address("owner")
		contract = ledger.Address("token")
		pair     = ledger.Address("pool")
	)

	log := eventlog.NewLog()
	sinks := []eventlog.Sink{log}

	ctx := context.Background()
	if *journalPath != "" {
		store, err := journal.NewSQLiteStore(*journalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()
		rec, err := journal.NewRecorder(ctx, store, "ledger")
		if err != nil {
			return fmt.Errorf("open journal stream: %w", err)
		}
		defer func() {
			if err := rec.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			}
		}()
		sinks = append(sinks, rec)
	}

	tok, err := token.New(token.Config{
		Name:          "Reflect",
		Symbol:        "RFL",
		Decimals:      6,
		InitialSupply: uint256.NewInt(*supply),
		Owner:         owner,
		Contract:      contract,
		Sinks:         sinks,
	})
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	router := &simRouter{}
	tok.AttachPool(router, pair)

	if err := tok.SetTaxFeePercent(owner, *taxFee); err != nil {
		return fmt.Errorf("set tax fee: %w", err)
	}
	if err := tok.SetLiquidityFeePercent(owner, *liqFee); err != nil {
		return fmt.Errorf("set liquidity fee: %w", err)
	}

	// Fund the ring: each holder starts with an equal slice of half the
	// supply, the owner keeps the rest.
	accounts := make([]ledger.Address, *holders)
	slice := new(uint256.Int).Div(tok.TotalSupply(), uint256.NewInt(uint64(2*(*holders))))
	for i := range accounts {
		accounts[i] = ledger.Address(fmt.Sprintf("holder-%d", i+1))
		if err := tok.Transfer(owner, accounts[i], slice); err != nil {
			return fmt.Errorf("fund %s: %w", accounts[i], err)
		}
	}

	ten := uint256.NewInt(10)
	for round := 0; round < *rounds; round++ {
		for i, from := range accounts {
			to := accounts[(i+1)%len(accounts)]
			amount := new(uint256.Int).Div(tok.BalanceOf(from), ten)
			if amount.IsZero() {
				continue
			}
			if err := tok.Transfer(from, to, amount); err != nil {
				return fmt.Errorf("round %d, %s -> %s: %w", round+1, from, to, err)
			}
		}
	}

	printScenario(tok, log, router)

	if *logOut != "" {
		if err := log.SaveJSONL(*logOut); err != nil {
			return fmt.Errorf("write log: %w", err)
		}
		fmt.Printf("\nEvent log written to %s (%d events)\n", *logOut, log.Len())
	}
	return nil
}

func printScenario(tok *token.Token, log *eventlog.Log, router *simRouter) {
	balances := tok.Snapshot()
	addrs := make([]ledger.Address, 0, len(balances))
	for a := range balances {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	fmt.Println("=== Final Balances ===")
	for _, a := range addrs {
		fmt.Printf("  %-12s %s\n", a, balances[a].Dec())
	}
	fmt.Printf("  %-12s %s\n", "sum", balances.Sum().Dec())
	fmt.Printf("  %-12s %s\n", "supply", tok.TotalSupply().Dec())

	s := log.Summarize()
	fmt.Println("\n=== Activity ===")
	fmt.Printf("  transfers:       %d\n", s.NumTransfers)
	fmt.Printf("  volume:          %s\n", s.Transferred.Dec())
	fmt.Printf("  tax collected:   %s\n", tok.TotalFees().Dec())
	fmt.Printf("  conversions:     %d (%d swaps, %d liquidity adds)\n", s.NumConversions, router.swaps, router.adds)
}
