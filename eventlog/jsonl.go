package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/ledger"
)

// jsonlRecord is the wire form of an event. Amounts travel as decimal
// strings so values near the supply never lose precision to float64.
type jsonlRecord struct {
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Amount     string            `json:"amount"`
	Timestamp  string            `json:"timestamp"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// WriteJSONL writes the log as JSON Lines, one event per line.
func (l *Log) WriteJSONL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, ev := range l.events {
		rec := jsonlRecord{
			Seq:        ev.Seq,
			Type:       string(ev.Type),
			From:       string(ev.From),
			To:         string(ev.To),
			Amount:     ev.Amount.Dec(),
			Timestamp:  ev.Timestamp.UTC().Format(time.RFC3339Nano),
			Attributes: ev.Attributes,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding event %d: %w", ev.Seq, err)
		}
	}
	return bw.Flush()
}

// SaveJSONL writes the log to a file.
func (l *Log) SaveJSONL(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return l.WriteJSONL(f)
}

// ParseJSONL reads a log previously written with WriteJSONL.
func ParseJSONL(r io.Reader) (*Log, error) {
	log := NewLog()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		ev, err := rec.event()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		log.Record(ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return log, nil
}

// LoadJSONL reads a log from a file.
func LoadJSONL(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ParseJSONL(f)
}

func (rec jsonlRecord) event() (Event, error) {
	amount := new(uint256.Int)
	if rec.Amount != "" {
		if err := amount.SetFromDecimal(rec.Amount); err != nil {
			return Event{}, fmt.Errorf("invalid amount %q: %w", rec.Amount, err)
		}
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Seq:        rec.Seq,
		Type:       Type(rec.Type),
		From:       ledger.Address(rec.From),
		To:         ledger.Address(rec.To),
		Amount:     amount,
		Timestamp:  ts,
		Attributes: rec.Attributes,
	}, nil
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
