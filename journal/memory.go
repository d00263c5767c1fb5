package journal

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	all     []*Event // global append order, served by ReadAll
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

// Append adds events to a stream, assigning contiguous versions.
func (s *MemoryStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	current := len(stream) - 1
	if current != expectedVersion {
		return current, ErrConcurrencyConflict
	}
	for _, ev := range events {
		current++
		stored := *ev
		stored.StreamID = streamID
		stored.Version = current
		s.streams[streamID] = append(s.streams[streamID], &stored)
		s.all = append(s.all, &stored)
	}
	return current, nil
}

// Read returns a stream's events from the given version onward.
func (s *MemoryStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, ev := range s.streams[streamID] {
		if ev.Version >= fromVersion {
			out = append(out, ev)
		}
	}
	return out, nil
}

// ReadAll returns every stored event matching the filter, in global
// append order.
func (s *MemoryStore) ReadAll(ctx context.Context, filter Filter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, ev := range s.all {
		if filter.matches(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// StreamVersion returns a stream's current version, -1 if it does not
// exist.
func (s *MemoryStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[streamID]) - 1, nil
}

// DeleteStream removes a stream and its events.
func (s *MemoryStore) DeleteStream(ctx context.Context, streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.streams, streamID)
	kept := s.all[:0]
	for _, ev := range s.all {
		if ev.StreamID != streamID {
			kept = append(kept, ev)
		}
	}
	s.all = kept
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
