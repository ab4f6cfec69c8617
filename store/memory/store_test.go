package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	mint "github.com/xraph/mint"
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/store/memory"
	"github.com/xraph/mint/types"
)

var (
	alice = types.Address("alice")
	bob   = types.Address("bob")
	carol = types.Address("carol")

	at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func stamped(seq uint64, ev *event.Event) *event.Event {
	ev.Sequence = seq
	return ev
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	seed := []*event.Event{
		stamped(1, event.NewTransfer(types.NilAddress, alice, types.NilAddress, types.Tokens(100), alice, at)),
		stamped(2, event.NewApproval(alice, bob, types.Tokens(10), at)),
		stamped(3, event.NewTransfer(alice, bob, types.NilAddress, types.Tokens(5), alice, at)),
		stamped(4, event.NewPaused(alice, at)),
		stamped(5, event.NewTransfer(bob, carol, types.NilAddress, types.Tokens(1), bob, at)),
	}
	if err := s.Append(context.Background(), 0, seed); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	return s
}

func TestAppendSequenceConflict(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	ev := stamped(1, event.NewPaused(alice, at))
	if err := s.Append(ctx, 0, []*event.Event{ev}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Appending at a stale expected sequence must be rejected.
	dup := stamped(1, event.NewUnpaused(alice, at))
	err := s.Append(ctx, 0, []*event.Event{dup})
	if !errors.Is(err, mint.ErrSequenceConflict) {
		t.Errorf("Append() error = %v, want ErrSequenceConflict", err)
	}

	last, err := s.LastSequence(ctx)
	if err != nil {
		t.Fatalf("LastSequence() error = %v", err)
	}
	if last != 1 {
		t.Errorf("LastSequence() = %d, want 1", last)
	}
}

func TestRead(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		from  uint64
		limit int
		want  []uint64
	}{
		{"all from genesis", 1, 0, []uint64{1, 2, 3, 4, 5}},
		{"window", 2, 2, []uint64{2, 3}},
		{"tail", 4, 0, []uint64{4, 5}},
		{"past the end", 6, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Read(ctx, tt.from, tt.limit)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Read() returned %d events, want %d", len(got), len(tt.want))
			}
			for i, ev := range got {
				if ev.Sequence != tt.want[i] {
					t.Errorf("event %d sequence = %d, want %d", i, ev.Sequence, tt.want[i])
				}
			}
		})
	}
}

func TestGet(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	ev := stamped(1, event.NewPaused(alice, at))
	if err := s.Append(ctx, 0, []*event.Event{ev}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Kind != event.KindPaused || got.Sequence != 1 {
		t.Errorf("Get() = kind %q sequence %d, want paused at 1", got.Kind, got.Sequence)
	}

	other := event.NewUnpaused(alice, at)
	if _, err := s.Get(ctx, other.ID); !errors.Is(err, mint.ErrEventNotFound) {
		t.Errorf("Get() error = %v, want ErrEventNotFound", err)
	}
}

func TestQuery(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts event.QueryOpts
		want []uint64
	}{
		{"all", event.QueryOpts{}, []uint64{1, 2, 3, 4, 5}},
		{"transfers only", event.QueryOpts{Kinds: []event.Kind{event.KindTransfer}}, []uint64{1, 3, 5}},
		{"touching bob", event.QueryOpts{Address: bob}, []uint64{2, 3, 5}},
		{"sequence window", event.QueryOpts{FromSequence: 2, ToSequence: 4}, []uint64{2, 3, 4}},
		{"offset and limit", event.QueryOpts{Kinds: []event.Kind{event.KindTransfer}, Offset: 1, Limit: 1}, []uint64{3}},
		{"negative offset", event.QueryOpts{Offset: -3, Limit: 2}, []uint64{1, 2}},
		{"negative limit", event.QueryOpts{Offset: -1, Limit: -1}, []uint64{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Query() returned %d events, want %d", len(got), len(tt.want))
			}
			for i, ev := range got {
				if ev.Sequence != tt.want[i] {
					t.Errorf("event %d sequence = %d, want %d", i, ev.Sequence, tt.want[i])
				}
			}
		})
	}
}

func TestLastSequence(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	last, err := s.LastSequence(ctx)
	if err != nil {
		t.Fatalf("LastSequence() error = %v", err)
	}
	if last != 0 {
		t.Errorf("LastSequence() = %d, want 0 on empty journal", last)
	}

	batch := []*event.Event{
		stamped(1, event.NewPaused(alice, at)),
		stamped(2, event.NewUnpaused(alice, at)),
	}
	if err := s.Append(ctx, 0, batch); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	last, err = s.LastSequence(ctx)
	if err != nil {
		t.Fatalf("LastSequence() error = %v", err)
	}
	if last != 2 {
		t.Errorf("LastSequence() = %d, want 2", last)
	}
}

func TestReadReturnsCopies(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	ev := stamped(1, event.NewPaused(alice, at))
	if err := s.Append(ctx, 0, []*event.Event{ev}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Read(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got[0].Sender = types.Address("mallory")

	again, err := s.Read(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if again[0].Sender != alice {
		t.Errorf("stored event mutated through a read copy: sender = %q", again[0].Sender)
	}
}
