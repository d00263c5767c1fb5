package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/reflect-xyz/go-reflect/eventlog"
	"github.com/reflect-xyz/go-reflect/journal"
	"github.com/reflect-xyz/go-reflect/ledger"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	typeFilter := fs.String("type", "", "Filter by event type")
	account := fs.String("account", "", "Show only events touching this account")
	db := fs.String("db", "", "Read events from a SQLite journal instead of a JSONL file")
	stream := fs.String("stream", "ledger", "Journal stream to replay (with --db)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: reflect events [<events.jsonl>] [options]

Display the timeline of a recorded event log.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show all events
  reflect events events.jsonl

  # Only transfers touching one account
  reflect events events.jsonl --type transfer --account holder-1

  # Replay a persisted journal
  reflect events --db ledger.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	var log *eventlog.Log
	switch {
	case *db != "":
		store, err := journal.NewSQLiteStore(*db)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()
		log, err = journal.Replay(context.Background(), store, *stream)
		if err != nil {
			return fmt.Errorf("replay journal: %w", err)
		}
	case fs.NArg() >= 1:
		var err error
		log, err = eventlog.LoadJSONL(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
	default:
		fs.Usage()
		return fmt.Errorf("event log file or --db required")
	}

	shown := log.Events()
	if *account != "" {
		shown = log.Trace(ledger.Address(*account))
	}
	if *typeFilter != "" {
		filtered := shown[:0]
		for _, ev := range shown {
			if ev.Type == eventlog.Type(*typeFilter) {
				filtered = append(filtered, ev)
			}
		}
		shown = filtered
	}

	if len(shown) == 0 {
		fmt.Println("No matching events")
		return nil
	}

	fmt.Printf("=== Events Timeline (%d events) ===\n\n", len(shown))
	for _, ev := range shown {
		parties := ""
		switch {
		case ev.From != ledger.ZeroAddress && ev.To != ledger.ZeroAddress:
			parties = fmt.Sprintf("%s -> %s", ev.From, ev.To)
		case ev.From != ledger.ZeroAddress:
			parties = string(ev.From)
		case ev.To != ledger.ZeroAddress:
			parties = string(ev.To)
		}
		fmt.Printf("#%-5d %-32s %-24s %s\n", ev.Seq, ev.Type, parties, ev.Amount.Dec())
		for key, value := range ev.Attributes {
			fmt.Printf("       %s: %s\n", key, value)
		}
	}

	s := log.Summarize()
	fmt.Println("\n=== Summary ===")
	fmt.Printf("  events:      %d\n", s.NumEvents)
	fmt.Printf("  transfers:   %d\n", s.NumTransfers)
	fmt.Printf("  accounts:    %d\n", s.NumAccounts)
	fmt.Printf("  volume:      %s\n", s.Transferred.Dec())
	fmt.Printf("  conversions: %d\n", s.NumConversions)
	return nil
}
