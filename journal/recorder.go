package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/reflect-xyz/go-reflect/eventlog"
	"github.com/reflect-xyz/go-reflect/ledger"
)

// entry is the persisted form of a ledger event. Amounts travel as
// decimal strings.
type entry struct {
	Seq        uint64            `json:"seq"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Amount     string            `json:"amount"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Recorder is an eventlog.Sink that appends every ledger event to one
// stream of a Store. The Sink interface cannot return errors, so the
// first failure is latched and all later events are dropped; check Err
// after a run.
type Recorder struct {
	store   Store
	stream  string
	ctx     context.Context
	version int
	err     error
}

// NewRecorder creates a recorder appending to the named stream, resuming
// at the stream's current version.
func NewRecorder(ctx context.Context, store Store, stream string) (*Recorder, error) {
	version, err := store.StreamVersion(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("resuming stream %s: %w", stream, err)
	}
	return &Recorder{
		store:   store,
		stream:  stream,
		ctx:     ctx,
		version: version,
	}, nil
}

// Record persists one ledger event.
func (r *Recorder) Record(ev eventlog.Event) {
	if r.err != nil {
		return
	}
	amount := "0"
	if ev.Amount != nil {
		amount = ev.Amount.Dec()
	}
	stored, err := NewEvent(r.stream, string(ev.Type), entry{
		Seq:        ev.Seq,
		From:       string(ev.From),
		To:         string(ev.To),
		Amount:     amount,
		Attributes: ev.Attributes,
	})
	if err != nil {
		r.err = err
		return
	}
	stored.Timestamp = ev.Timestamp
	version, err := r.store.Append(r.ctx, r.stream, r.version, []*Event{stored})
	if err != nil {
		r.err = fmt.Errorf("appending event %d: %w", ev.Seq, err)
		return
	}
	r.version = version
}

// Err returns the first persistence failure, if any.
func (r *Recorder) Err() error {
	return r.err
}

var _ eventlog.Sink = (*Recorder)(nil)

// Replay rebuilds an in-memory event log from a persisted stream.
func Replay(ctx context.Context, store Store, stream string) (*eventlog.Log, error) {
	events, err := store.Read(ctx, stream, 0)
	if err != nil {
		return nil, fmt.Errorf("reading stream %s: %w", stream, err)
	}
	log := eventlog.NewLog()
	for _, stored := range events {
		var e entry
		if err := json.Unmarshal(stored.Data, &e); err != nil {
			return nil, fmt.Errorf("event %s: decoding: %w", stored.ID, err)
		}
		amount := new(uint256.Int)
		if e.Amount != "" {
			if err := amount.SetFromDecimal(e.Amount); err != nil {
				return nil, fmt.Errorf("event %s: invalid amount %q: %w", stored.ID, e.Amount, err)
			}
		}
		log.Record(eventlog.Event{
			Type:       eventlog.Type(stored.Type),
			From:       ledger.Address(e.From),
			To:         ledger.Address(e.To),
			Amount:     amount,
			Timestamp:  stored.Timestamp,
			Attributes: e.Attributes,
		})
	}
	return log, nil
}
