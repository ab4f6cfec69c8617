package memory

import (
	"context"
	"sync"

	"github.com/xraph/mint"
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
)

// Store is an in-memory journal backend. Events are held in append
// order, index i holding sequence i+1, and are cloned on both write and
// read so callers can never rewrite history.
type Store struct {
	mu sync.RWMutex

	// Journal storage
	events []*event.Event
}

func New() *Store {
	return &Store{
		events: make([]*event.Event, 0),
	}
}

// Journal Store implementation
func (s *Store) Append(_ context.Context, expected uint64, events []*event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(len(s.events)) != expected {
		return mint.ErrSequenceConflict
	}
	for _, ev := range events {
		s.events = append(s.events, ev.Clone())
	}
	return nil
}

func (s *Store) Get(_ context.Context, eventID id.EventID) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ev := range s.events {
		if ev.ID.String() == eventID.String() {
			return ev.Clone(), nil
		}
	}
	return nil, mint.ErrEventNotFound
}

func (s *Store) Read(_ context.Context, from uint64, limit int) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if from < 1 {
		from = 1
	}
	if from > uint64(len(s.events)) {
		return []*event.Event{}, nil
	}

	result := make([]*event.Event, 0)
	for _, ev := range s.events[from-1:] {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, ev.Clone())
	}
	return result, nil
}

func (s *Store) Query(_ context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*event.Event, 0)
	for _, ev := range s.events {
		if opts.Matches(ev) {
			matched = append(matched, ev.Clone())
		}
	}

	// Apply limit/offset
	start := opts.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := start + opts.Limit
	if opts.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], nil
}

func (s *Store) LastSequence(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.events)), nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
