package event

import (
	"context"

	"github.com/xraph/mint/id"
)

// Store is the append-only journal. Implementations must write each
// Append batch atomically: either every event in the batch becomes
// durable or none does.
type Store interface {
	// Append writes events to the journal. expected is the sequence
	// number of the current journal head as the caller knows it; the
	// append fails when the journal has advanced past it. Events must
	// carry consecutive sequence numbers starting at expected+1.
	Append(ctx context.Context, expected uint64, events []*Event) error

	// Get returns the event with the given ID.
	Get(ctx context.Context, eventID id.EventID) (*Event, error)

	// Read returns events with Sequence >= from in ascending sequence
	// order, at most limit at a time. limit <= 0 means no cap.
	Read(ctx context.Context, from uint64, limit int) ([]*Event, error)

	// Query returns events matching opts in ascending sequence order.
	Query(ctx context.Context, opts QueryOpts) ([]*Event, error)

	// LastSequence returns the sequence number of the journal head,
	// or 0 when the journal is empty.
	LastSequence(ctx context.Context) (uint64, error)
}
