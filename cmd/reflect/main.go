package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := events(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "prove":
		if err := prove(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("reflect version 0.1.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`reflect - reflection token ledger tool

Usage:
  reflect <command> [options]

Commands:
  simulate   Run a trading scenario and report balances and fees
  events     Show the timeline of a recorded event log
  prove      Generate and verify a fee-split proof
  help       Show this help message
  version    Show version information

Examples:
  # Run a scenario and keep the event log
  reflect simulate --rounds 50 --log events.jsonl

  # Persist events to a SQLite journal while simulating
  reflect simulate --journal ledger.db

  # Inspect a recorded log
  reflect events events.jsonl --type transfer

  # Replay a journal instead of a JSONL file
  reflect events --db ledger.db

  # Attest one fee split
  reflect prove --amount 10000 --tax 5 --liquidity 5

For command-specific help, run:
  reflect <command> --help`)
}
