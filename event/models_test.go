package event_test

import (
	"testing"
	"time"

	"github.com/xraph/mint/event"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/types"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	alice = types.Address("alice")
	bob   = types.Address("bob")
	carol = types.Address("carol")
)

func TestEventShapes(t *testing.T) {
	mint := event.NewTransfer(types.NilAddress, alice, types.NilAddress, types.Tokens(5), bob, at)
	if !mint.IsMint() || mint.IsBurn() || mint.UsedAllowance() {
		t.Errorf("mint shape = IsMint %v IsBurn %v UsedAllowance %v", mint.IsMint(), mint.IsBurn(), mint.UsedAllowance())
	}

	burn := event.NewTransfer(alice, types.NilAddress, types.NilAddress, types.Tokens(5), alice, at)
	if burn.IsMint() || !burn.IsBurn() {
		t.Errorf("burn shape = IsMint %v IsBurn %v", burn.IsMint(), burn.IsBurn())
	}

	spend := event.NewTransfer(alice, bob, carol, types.Tokens(5), carol, at)
	if !spend.UsedAllowance() || spend.IsMint() || spend.IsBurn() {
		t.Errorf("allowance spend shape = UsedAllowance %v", spend.UsedAllowance())
	}

	if mint.ID.IsNil() || mint.ID.String() == burn.ID.String() {
		t.Error("constructors should assign unique event IDs")
	}
}

func TestTouches(t *testing.T) {
	ev := event.NewTransfer(alice, bob, carol, types.Tokens(1), carol, at)

	for _, addr := range []types.Address{alice, bob, carol} {
		if !ev.Touches(addr) {
			t.Errorf("Touches(%s) = false, want true", addr)
		}
	}
	if ev.Touches(types.Address("nobody")) {
		t.Error("Touches(nobody) = true, want false")
	}

	granted := event.NewRoleGranted(role.Distributor, alice, bob, at)
	if !granted.Touches(alice) || !granted.Touches(bob) {
		t.Error("role grant should touch both principal and sender")
	}
}

func TestQueryOptsMatches(t *testing.T) {
	transfer := event.NewTransfer(alice, bob, types.NilAddress, types.Tokens(1), alice, at)
	transfer.Sequence = 3
	paused := event.NewPaused(carol, at)
	paused.Sequence = 7

	tests := []struct {
		name string
		opts event.QueryOpts
		ev   *event.Event
		want bool
	}{
		{"empty opts match everything", event.QueryOpts{}, transfer, true},
		{"kind match", event.QueryOpts{Kinds: []event.Kind{event.KindTransfer}}, transfer, true},
		{"kind mismatch", event.QueryOpts{Kinds: []event.Kind{event.KindPaused}}, transfer, false},
		{"address match", event.QueryOpts{Address: bob}, transfer, true},
		{"address mismatch", event.QueryOpts{Address: bob}, paused, false},
		{"sequence window", event.QueryOpts{FromSequence: 2, ToSequence: 5}, transfer, true},
		{"below window", event.QueryOpts{FromSequence: 4}, transfer, false},
		{"above window", event.QueryOpts{ToSequence: 5}, paused, false},
		{"combined", event.QueryOpts{Kinds: []event.Kind{event.KindTransfer}, Address: alice, FromSequence: 1}, transfer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Matches(tt.ev); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	ev := event.NewMaxSupplyUpdated(types.Tokens(10), types.Tokens(20), alice, at)
	ev.Sequence = 9

	clone := ev.Clone()
	clone.Sequence = 42
	clone.Sender = bob

	if ev.Sequence != 9 || ev.Sender != alice {
		t.Errorf("mutating a clone changed the original: %+v", ev)
	}
	if clone.ID.String() != ev.ID.String() {
		t.Error("clone should keep the same event ID")
	}
}
