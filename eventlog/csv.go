package eventlog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/ledger"
)

var csvHeader = []string{"seq", "type", "from", "to", "amount", "timestamp", "attributes"}

// WriteCSV writes the log as CSV with a header row. Attributes are
// packed into a single JSON column.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, ev := range l.events {
		attrs := ""
		if len(ev.Attributes) > 0 {
			b, err := json.Marshal(ev.Attributes)
			if err != nil {
				return fmt.Errorf("encoding attributes for event %d: %w", ev.Seq, err)
			}
			attrs = string(b)
		}
		row := []string{
			strconv.FormatUint(ev.Seq, 10),
			string(ev.Type),
			string(ev.From),
			string(ev.To),
			ev.Amount.Dec(),
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
			attrs,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing event %d: %w", ev.Seq, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the log to a file.
func (l *Log) SaveCSV(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return l.WriteCSV(f)
}

// ParseCSV reads a log previously written with WriteCSV.
func ParseCSV(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return NewLog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], want)
		}
	}

	log := NewLog()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		ev, err := csvEvent(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		log.Record(ev)
	}
	return log, nil
}

// LoadCSV reads a log from a file.
func LoadCSV(filename string) (*Log, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

func csvEvent(row []string) (Event, error) {
	seq, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("invalid seq %q: %w", row[0], err)
	}
	amount := new(uint256.Int)
	if row[4] != "" {
		if err := amount.SetFromDecimal(row[4]); err != nil {
			return Event{}, fmt.Errorf("invalid amount %q: %w", row[4], err)
		}
	}
	ts, err := parseTimestamp(row[5])
	if err != nil {
		return Event{}, err
	}
	var attrs map[string]string
	if row[6] != "" {
		if err := json.Unmarshal([]byte(row[6]), &attrs); err != nil {
			return Event{}, fmt.Errorf("invalid attributes %q: %w", row[6], err)
		}
	}
	return Event{
		Seq:        seq,
		Type:       Type(row[1]),
		From:       ledger.Address(row[2]),
		To:         ledger.Address(row[3]),
		Amount:     amount,
		Timestamp:  ts,
		Attributes: attrs,
	}, nil
}
