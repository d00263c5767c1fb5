// Package journal persists the token's event stream in an append-only
// store with optimistic concurrency. The memory backend serves tests and
// simulations; the SQLite backend survives process restarts. A Recorder
// bridges the live eventlog stream into a store.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store errors.
var (
	ErrConcurrencyConflict = errors.New("journal: expected version does not match stream")
	ErrStreamNotFound      = errors.New("journal: stream not found")
)

// Event is one persisted entry. Version numbers start at zero and are
// contiguous within a stream.
type Event struct {
	ID        string          `json:"id"`
	StreamID  string          `json:"stream_id"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent creates an event with a fresh ID, marshaling data to JSON.
// The version is assigned by the store on append.
func NewEvent(streamID, eventType string, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshaling event data: %w", err)
		}
		raw = b
	}
	return &Event{
		ID:        uuid.New().String(),
		StreamID:  streamID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Filter narrows a ReadAll. Zero values match everything.
type Filter struct {
	StreamID string
	Types    []string
}

func (f Filter) matches(ev *Event) bool {
	if f.StreamID != "" && ev.StreamID != f.StreamID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if ev.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Store is an append-only event store. Append fails with
// ErrConcurrencyConflict when expectedVersion does not match the stream's
// current version; a new stream has version -1.
type Store interface {
	Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error)
	Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error)
	ReadAll(ctx context.Context, filter Filter) ([]*Event, error)
	StreamVersion(ctx context.Context, streamID string) (int, error)
	DeleteStream(ctx context.Context, streamID string) error
	Close() error
}
