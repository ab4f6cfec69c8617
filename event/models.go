// Package event defines the append-only journal records for Mint.
package event

import (
	"time"

	"github.com/xraph/mint/id"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/types"
)

// Kind classifies a journal event.
type Kind string

const (
	KindTransfer         Kind = "transfer"
	KindApproval         Kind = "approval"
	KindRoleGranted      Kind = "role_granted"
	KindRoleRevoked      Kind = "role_revoked"
	KindPaused           Kind = "paused"
	KindUnpaused         Kind = "unpaused"
	KindMaxSupplyUpdated Kind = "max_supply_updated"
)

// Kinds lists every journal event kind.
func Kinds() []Kind {
	return []Kind{
		KindTransfer,
		KindApproval,
		KindRoleGranted,
		KindRoleRevoked,
		KindPaused,
		KindUnpaused,
		KindMaxSupplyUpdated,
	}
}

// Event is one immutable journal record. The journal is the system of
// record: replaying all events in sequence order reconstructs the whole
// ledger state.
//
// Which fields carry meaning depends on Kind:
//   - transfer: From, To, Amount. Spender is set when the move consumed
//     an allowance. A nil From marks a mint, a nil To a burn.
//   - approval: Owner, Spender, Amount (the absolute allowance).
//   - role_granted, role_revoked: Role, Principal.
//   - paused, unpaused: no extra fields.
//   - max_supply_updated: Prev, Amount (the new ceiling).
//
// Sender is the principal whose call produced the event, on every kind.
type Event struct {
	ID        id.EventID    `json:"id"`
	Sequence  uint64        `json:"sequence"`
	Kind      Kind          `json:"kind"`
	From      types.Address `json:"from,omitempty"`
	To        types.Address `json:"to,omitempty"`
	Owner     types.Address `json:"owner,omitempty"`
	Spender   types.Address `json:"spender,omitempty"`
	Role      role.Role     `json:"role,omitempty"`
	Principal types.Address `json:"principal,omitempty"`
	Sender    types.Address `json:"sender,omitempty"`
	Amount    types.Amount  `json:"amount"`
	Prev      types.Amount  `json:"prev"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewTransfer records a movement of amount between holders. A nil from
// marks a mint, a nil to a burn. spender, when non-nil, is the principal
// whose allowance funded the move.
func NewTransfer(from, to, spender types.Address, amount types.Amount, sender types.Address, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindTransfer,
		From:      from,
		To:        to,
		Spender:   spender,
		Amount:    amount,
		Sender:    sender,
		Timestamp: at,
	}
}

// NewApproval records owner setting spender's allowance to amount.
func NewApproval(owner, spender types.Address, amount types.Amount, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindApproval,
		Owner:     owner,
		Spender:   spender,
		Amount:    amount,
		Sender:    owner,
		Timestamp: at,
	}
}

// NewRoleGranted records sender granting r to principal.
func NewRoleGranted(r role.Role, principal, sender types.Address, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindRoleGranted,
		Role:      r,
		Principal: principal,
		Sender:    sender,
		Timestamp: at,
	}
}

// NewRoleRevoked records sender removing r from principal. A renounce
// is recorded with sender equal to principal.
func NewRoleRevoked(r role.Role, principal, sender types.Address, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindRoleRevoked,
		Role:      r,
		Principal: principal,
		Sender:    sender,
		Timestamp: at,
	}
}

// NewPaused records sender engaging the pause switch.
func NewPaused(sender types.Address, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindPaused,
		Sender:    sender,
		Timestamp: at,
	}
}

// NewUnpaused records sender releasing the pause switch.
func NewUnpaused(sender types.Address, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindUnpaused,
		Sender:    sender,
		Timestamp: at,
	}
}

// NewMaxSupplyUpdated records the supply ceiling moving from prev to next.
func NewMaxSupplyUpdated(prev, next types.Amount, sender types.Address, at time.Time) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Kind:      KindMaxSupplyUpdated,
		Prev:      prev,
		Amount:    next,
		Sender:    sender,
		Timestamp: at,
	}
}

// IsMint reports whether e is a transfer crediting new supply.
func (e *Event) IsMint() bool {
	return e.Kind == KindTransfer && e.From.IsNil()
}

// IsBurn reports whether e is a transfer destroying supply.
func (e *Event) IsBurn() bool {
	return e.Kind == KindTransfer && e.To.IsNil()
}

// UsedAllowance reports whether e is a transfer funded by an allowance.
func (e *Event) UsedAllowance() bool {
	return e.Kind == KindTransfer && !e.Spender.IsNil()
}

// Touches reports whether addr appears in any principal field of e.
func (e *Event) Touches(addr types.Address) bool {
	return e.From == addr || e.To == addr || e.Owner == addr ||
		e.Spender == addr || e.Principal == addr || e.Sender == addr
}

// Clone returns a copy of e. Events hold only value fields, so a
// shallow copy is a full copy.
func (e *Event) Clone() *Event {
	cp := *e
	return &cp
}

// QueryOpts filters journal reads.
type QueryOpts struct {
	Kinds        []Kind        // empty = all kinds
	Address      types.Address // matches any principal field; nil = all
	FromSequence uint64        // inclusive lower bound; 0 = from genesis
	ToSequence   uint64        // inclusive upper bound; 0 = unbounded
	Limit        int
	Offset       int
}

// Matches reports whether e passes the kind, address, and sequence
// filters. Limit and Offset are applied by the store.
func (o QueryOpts) Matches(e *Event) bool {
	if len(o.Kinds) > 0 {
		found := false
		for _, k := range o.Kinds {
			if e.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !o.Address.IsNil() && !e.Touches(o.Address) {
		return false
	}
	if o.FromSequence > 0 && e.Sequence < o.FromSequence {
		return false
	}
	if o.ToSequence > 0 && e.Sequence > o.ToSequence {
		return false
	}
	return true
}
