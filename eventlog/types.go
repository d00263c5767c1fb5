// Package eventlog provides the typed event stream a token emits as it
// runs: transfers, approvals, configuration changes, and liquidity
// conversions. The in-memory log supports per-account traces and summary
// statistics; JSONL and CSV codecs round-trip logs for offline analysis.
package eventlog

import (
	"sort"
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/ledger"
)

// Type classifies an event.
type Type string

const (
	TypeTransfer        Type = "transfer"
	TypeApproval        Type = "approval"
	TypeMinTokensUpdate Type = "min_tokens_before_swap_updated"
	TypeSwapAndLiquify  Type = "swap_and_liquify"
)

// Event is one observed state change. Amount carries the event's primary
// quantity (net amount for transfers, approved amount for approvals);
// secondary quantities ride in Attributes as decimal strings, which also
// keeps large values exact through JSON.
type Event struct {
	Seq        uint64
	Type       Type
	From       ledger.Address
	To         ledger.Address
	Amount     *uint256.Int
	Timestamp  time.Time
	Attributes map[string]string
}

// Sink receives events as they are emitted.
type Sink interface {
	Record(Event)
}

// Log is an append-only in-memory event log. It implements Sink.
type Log struct {
	events  []Event
	nextSeq uint64
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Record appends an event, stamping it with the next sequence number.
func (l *Log) Record(ev Event) {
	ev.Seq = l.nextSeq
	l.nextSeq++
	if ev.Attributes == nil {
		ev.Attributes = make(map[string]string)
	}
	if ev.Amount == nil {
		ev.Amount = new(uint256.Int)
	}
	l.events = append(l.events, ev)
}

// Events returns the recorded events in order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}

// ByType returns the events of one type, in order.
func (l *Log) ByType(t Type) []Event {
	var out []Event
	for _, ev := range l.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Trace returns every event an account participated in, as sender or
// recipient, in order.
func (l *Log) Trace(a ledger.Address) []Event {
	var out []Event
	for _, ev := range l.events {
		if ev.From == a || ev.To == a {
			out = append(out, ev)
		}
	}
	return out
}

// Accounts returns a sorted list of accounts that appear in the log.
func (l *Log) Accounts() []ledger.Address {
	seen := make(map[ledger.Address]bool)
	for _, ev := range l.events {
		if ev.From != ledger.ZeroAddress {
			seen[ev.From] = true
		}
		if ev.To != ledger.ZeroAddress {
			seen[ev.To] = true
		}
	}
	out := make([]ledger.Address, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Summary aggregates basic statistics over one log.
type Summary struct {
	NumEvents      int
	NumTransfers   int
	NumAccounts    int
	Transferred    *uint256.Int // sum of transfer net amounts
	NumConversions int
	StartTime      time.Time
	EndTime        time.Time
}

// Summarize computes summary statistics.
func (l *Log) Summarize() Summary {
	s := Summary{
		NumEvents:   len(l.events),
		NumAccounts: len(l.Accounts()),
		Transferred: new(uint256.Int),
	}
	for i, ev := range l.events {
		switch ev.Type {
		case TypeTransfer:
			s.NumTransfers++
			s.Transferred.Add(s.Transferred, ev.Amount)
		case TypeSwapAndLiquify:
			s.NumConversions++
		}
		if i == 0 || ev.Timestamp.Before(s.StartTime) {
			s.StartTime = ev.Timestamp
		}
		if ev.Timestamp.After(s.EndTime) {
			s.EndTime = ev.Timestamp
		}
	}
	return s
}
