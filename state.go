package mint

import (
	"fmt"
	"sort"
	"time"

	"github.com/xraph/mint/event"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/types"
)

// Token identity constants, fixed at creation.
const (
	TokenName     = "Mint"
	TokenSymbol   = "MNT"
	TokenDecimals = uint8(types.Decimals)
)

// Genesis constants, baked in at creation.
var (
	// GenesisSupply is minted to the deployer when a fresh journal is
	// initialized: 50 million whole tokens.
	GenesisSupply = types.Tokens(50_000_000)

	// GenesisMaxSupply is the initial supply ceiling: 1 billion whole
	// tokens.
	GenesisMaxSupply = types.Tokens(1_000_000_000)
)

type allowanceKey struct {
	owner   types.Address
	spender types.Address
}

// State is the deterministic ledger state machine. Command methods
// validate a call against the current state and return the journal
// events it produces without mutating anything; Apply folds an event
// into the state. Replaying a journal through Apply in sequence order
// reproduces the exact state that wrote it.
//
// State is not safe for concurrent use, and command methods do not
// validate the acting principal: the engine serializes calls and
// rejects the null sender before dispatching to a command. Standalone
// users must do both, or a nil sender can journal a record that reads
// as a mint.
type State struct {
	balances   map[types.Address]types.Amount
	allowances map[allowanceKey]types.Amount
	roles      map[role.Role]map[types.Address]struct{}
	paused     bool
	supply     types.Amount
	maxSupply  types.Amount
	seq        uint64
}

// NewState returns an empty state: no balances, no roles, gate Active,
// ceiling at the genesis value. Seed it with Genesis or fold an
// existing journal through Apply.
func NewState() *State {
	return &State{
		balances:   make(map[types.Address]types.Amount),
		allowances: make(map[allowanceKey]types.Amount),
		roles:      make(map[role.Role]map[types.Address]struct{}),
		maxSupply:  GenesisMaxSupply,
	}
}

// Genesis returns the events that seed a fresh ledger: the genesis
// supply minted to deployer and the admin role granted to deployer.
// It fails once any event has been applied.
func (s *State) Genesis(deployer types.Address, now time.Time) ([]*event.Event, error) {
	if deployer.IsNil() {
		return nil, ErrZeroAddress
	}
	if s.seq != 0 {
		return nil, ErrGenesisApplied
	}

	return s.stamp(
		event.NewTransfer(types.NilAddress, deployer, types.NilAddress, GenesisSupply, deployer, now),
		event.NewRoleGranted(role.Admin, deployer, deployer, now),
	), nil
}

// ──────────────────────────────────────────────────
// Ledger core commands
// ──────────────────────────────────────────────────

// Transfer moves amount from sender to to. A self transfer is a legal
// no-op that still produces an event.
func (s *State) Transfer(sender, to types.Address, amount types.Amount, now time.Time) (*event.Event, error) {
	if s.paused {
		return nil, ErrContractPaused
	}
	if to.IsNil() {
		return nil, ErrZeroAddress
	}
	if s.balances[sender].LessThan(amount) {
		return nil, ErrInsufficientBalance
	}

	return s.next(event.NewTransfer(sender, to, types.NilAddress, amount, sender, now)), nil
}

// Approve sets spender's allowance from owner to exactly amount,
// replacing any prior value. Approvals pass the pause gate and require
// no balance.
func (s *State) Approve(owner, spender types.Address, amount types.Amount, now time.Time) (*event.Event, error) {
	return s.next(event.NewApproval(owner, spender, amount, now)), nil
}

// TransferFrom moves amount from owner to to on spender's authority,
// consuming that much of spender's allowance.
func (s *State) TransferFrom(spender, owner, to types.Address, amount types.Amount, now time.Time) (*event.Event, error) {
	if s.paused {
		return nil, ErrContractPaused
	}
	if s.Allowance(owner, spender).LessThan(amount) {
		return nil, ErrInsufficientAllowance
	}
	if s.balances[owner].LessThan(amount) {
		return nil, ErrInsufficientBalance
	}
	if to.IsNil() {
		return nil, ErrZeroAddress
	}

	return s.next(event.NewTransfer(owner, to, spender, amount, spender, now)), nil
}

// Mint credits amount of new supply to to. sender must hold the
// Distributor role and the new total supply must stay under the
// ceiling.
func (s *State) Mint(sender, to types.Address, amount types.Amount, now time.Time) (*event.Event, error) {
	if s.paused {
		return nil, ErrContractPaused
	}
	if err := s.requireRole(sender, role.Distributor); err != nil {
		return nil, err
	}
	if to.IsNil() {
		return nil, ErrZeroAddress
	}
	if s.exceedsCeiling(amount) {
		return nil, ErrSupplyCapExceeded
	}

	return s.next(event.NewTransfer(types.NilAddress, to, types.NilAddress, amount, sender, now)), nil
}

// Burn destroys amount of sender's own tokens, shrinking total supply.
func (s *State) Burn(sender types.Address, amount types.Amount, now time.Time) (*event.Event, error) {
	if s.paused {
		return nil, ErrContractPaused
	}
	if s.balances[sender].LessThan(amount) {
		return nil, ErrInsufficientBalance
	}

	return s.next(event.NewTransfer(sender, types.NilAddress, types.NilAddress, amount, sender, now)), nil
}

// BurnFrom destroys amount of owner's tokens on spender's authority,
// consuming that much of spender's allowance.
func (s *State) BurnFrom(spender, owner types.Address, amount types.Amount, now time.Time) (*event.Event, error) {
	if s.paused {
		return nil, ErrContractPaused
	}
	if s.Allowance(owner, spender).LessThan(amount) {
		return nil, ErrInsufficientAllowance
	}
	if s.balances[owner].LessThan(amount) {
		return nil, ErrInsufficientBalance
	}

	return s.next(event.NewTransfer(owner, types.NilAddress, spender, amount, spender, now)), nil
}

// ──────────────────────────────────────────────────
// Batch operations
// ──────────────────────────────────────────────────

// BatchMint credits new supply to several recipients in one atomic
// call. The whole batch is validated, including the aggregate against
// the ceiling, before any mint applies: either every recipient is
// credited or none is. One event is produced per recipient, in
// argument order.
func (s *State) BatchMint(sender types.Address, recipients []types.Address, amounts []types.Amount, now time.Time) ([]*event.Event, error) {
	if s.paused {
		return nil, ErrContractPaused
	}
	if err := s.requireRole(sender, role.Distributor); err != nil {
		return nil, err
	}
	if len(recipients) != len(amounts) {
		return nil, ErrLengthMismatch
	}
	for _, to := range recipients {
		if to.IsNil() {
			return nil, ErrZeroAddress
		}
	}

	total := types.ZeroAmount()
	for _, amount := range amounts {
		if total.AddOverflows(amount) {
			return nil, ErrSupplyCapExceeded
		}
		total = total.Add(amount)
	}
	if s.exceedsCeiling(total) {
		return nil, ErrSupplyCapExceeded
	}

	events := make([]*event.Event, len(recipients))
	for i, to := range recipients {
		events[i] = event.NewTransfer(types.NilAddress, to, types.NilAddress, amounts[i], sender, now)
	}
	return s.stamp(events...), nil
}

// ──────────────────────────────────────────────────
// Pause gate
// ──────────────────────────────────────────────────

// Pause engages the pause switch, blocking balance-mutating operations
// until Unpause. Admin only.
func (s *State) Pause(sender types.Address, now time.Time) (*event.Event, error) {
	if err := s.requireRole(sender, role.Admin); err != nil {
		return nil, err
	}
	if s.paused {
		return nil, ErrAlreadyPaused
	}

	return s.next(event.NewPaused(sender, now)), nil
}

// Unpause releases the pause switch. Admin only.
func (s *State) Unpause(sender types.Address, now time.Time) (*event.Event, error) {
	if err := s.requireRole(sender, role.Admin); err != nil {
		return nil, err
	}
	if !s.paused {
		return nil, ErrNotPaused
	}

	return s.next(event.NewUnpaused(sender, now)), nil
}

// ──────────────────────────────────────────────────
// Access control registry
// ──────────────────────────────────────────────────

// GrantRole adds principal to r. Admin only. Granting a role the
// principal already holds succeeds and is recorded again.
func (s *State) GrantRole(sender types.Address, r role.Role, principal types.Address, now time.Time) (*event.Event, error) {
	if err := s.requireRole(sender, role.Admin); err != nil {
		return nil, err
	}

	return s.next(event.NewRoleGranted(r, principal, sender, now)), nil
}

// RevokeRole removes principal from r. Admin only. Revoking a role the
// principal does not hold succeeds and is recorded anyway.
func (s *State) RevokeRole(sender types.Address, r role.Role, principal types.Address, now time.Time) (*event.Event, error) {
	if err := s.requireRole(sender, role.Admin); err != nil {
		return nil, err
	}

	return s.next(event.NewRoleRevoked(r, principal, sender, now)), nil
}

// RenounceRole lets a principal drop one of its own roles. sender must
// equal principal; no admin role is required. The event records the
// principal as its own revoker.
func (s *State) RenounceRole(sender types.Address, r role.Role, principal types.Address, now time.Time) (*event.Event, error) {
	if sender != principal {
		return nil, ErrUnauthorized
	}

	return s.next(event.NewRoleRevoked(r, principal, sender, now)), nil
}

// ──────────────────────────────────────────────────
// Supply policy
// ──────────────────────────────────────────────────

// SetMaxSupply moves the supply ceiling to next. Admin only. The
// ceiling may be raised or lowered freely as long as it stays at or
// above the current total supply.
func (s *State) SetMaxSupply(sender types.Address, next types.Amount, now time.Time) (*event.Event, error) {
	if err := s.requireRole(sender, role.Admin); err != nil {
		return nil, err
	}
	if next.LessThan(s.supply) {
		return nil, ErrCeilingBelowSupply
	}

	return s.next(event.NewMaxSupplyUpdated(s.maxSupply, next, sender, now)), nil
}

// ──────────────────────────────────────────────────
// Fold
// ──────────────────────────────────────────────────

// Apply folds ev into the state. It assumes ev was produced by a
// command against this exact state, or is being replayed from a
// journal in sequence order, and panics on arithmetic a command would
// have rejected.
func (s *State) Apply(ev *event.Event) {
	switch ev.Kind {
	case event.KindTransfer:
		s.applyTransfer(ev)
	case event.KindApproval:
		s.allowances[allowanceKey{ev.Owner, ev.Spender}] = ev.Amount
	case event.KindRoleGranted:
		members := s.roles[ev.Role]
		if members == nil {
			members = make(map[types.Address]struct{})
			s.roles[ev.Role] = members
		}
		members[ev.Principal] = struct{}{}
	case event.KindRoleRevoked:
		delete(s.roles[ev.Role], ev.Principal)
	case event.KindPaused:
		s.paused = true
	case event.KindUnpaused:
		s.paused = false
	case event.KindMaxSupplyUpdated:
		s.maxSupply = ev.Amount
	}
	s.seq = ev.Sequence
}

func (s *State) applyTransfer(ev *event.Event) {
	if ev.UsedAllowance() {
		key := allowanceKey{ev.From, ev.Spender}
		s.allowances[key] = s.allowances[key].Subtract(ev.Amount)
	}
	if ev.From.IsNil() {
		s.supply = s.supply.Add(ev.Amount)
	} else {
		s.balances[ev.From] = s.balances[ev.From].Subtract(ev.Amount)
	}
	if ev.To.IsNil() {
		s.supply = s.supply.Subtract(ev.Amount)
	} else {
		s.balances[ev.To] = s.balances[ev.To].Add(ev.Amount)
	}
}

// Replay folds events in order, verifying sequence contiguity.
func (s *State) Replay(events []*event.Event) error {
	for _, ev := range events {
		if ev.Sequence != s.seq+1 {
			return fmt.Errorf("%w: expected sequence %d, got %d", ErrCorruptJournal, s.seq+1, ev.Sequence)
		}
		s.Apply(ev)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Views
// ──────────────────────────────────────────────────

// Name returns the token name.
func (s *State) Name() string { return TokenName }

// Symbol returns the token symbol.
func (s *State) Symbol() string { return TokenSymbol }

// Decimals returns the number of fractional digits, fixed at 18.
func (s *State) Decimals() uint8 { return TokenDecimals }

// TotalSupply returns the sum of all balances.
func (s *State) TotalSupply() types.Amount { return s.supply }

// MaxSupply returns the current supply ceiling.
func (s *State) MaxSupply() types.Amount { return s.maxSupply }

// BalanceOf returns addr's balance. Unknown addresses hold zero.
func (s *State) BalanceOf(addr types.Address) types.Amount { return s.balances[addr] }

// Allowance returns what spender may still draw from owner's balance.
func (s *State) Allowance(owner, spender types.Address) types.Amount {
	return s.allowances[allowanceKey{owner, spender}]
}

// Paused reports whether the pause switch is engaged.
func (s *State) Paused() bool { return s.paused }

// HasRole reports whether principal holds r.
func (s *State) HasRole(r role.Role, principal types.Address) bool {
	_, ok := s.roles[r][principal]
	return ok
}

// Sequence returns the sequence number of the last applied event, or 0
// for a fresh state.
func (s *State) Sequence() uint64 { return s.seq }

// Snapshot is a point-in-time copy of the full ledger state.
type Snapshot struct {
	Sequence    uint64                                           `json:"sequence"`
	Paused      bool                                             `json:"paused"`
	TotalSupply types.Amount                                     `json:"total_supply"`
	MaxSupply   types.Amount                                     `json:"max_supply"`
	Balances    map[types.Address]types.Amount                   `json:"balances"`
	Allowances  map[types.Address]map[types.Address]types.Amount `json:"allowances"`
	Roles       map[role.Role][]types.Address                    `json:"roles"`
}

// Snapshot copies the state for inspection. Role members are sorted so
// snapshots of equal states compare equal.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Sequence:    s.seq,
		Paused:      s.paused,
		TotalSupply: s.supply,
		MaxSupply:   s.maxSupply,
		Balances:    make(map[types.Address]types.Amount, len(s.balances)),
		Allowances:  make(map[types.Address]map[types.Address]types.Amount),
		Roles:       make(map[role.Role][]types.Address, len(s.roles)),
	}
	for addr, bal := range s.balances {
		snap.Balances[addr] = bal
	}
	for key, amount := range s.allowances {
		byOwner := snap.Allowances[key.owner]
		if byOwner == nil {
			byOwner = make(map[types.Address]types.Amount)
			snap.Allowances[key.owner] = byOwner
		}
		byOwner[key.spender] = amount
	}
	for r, members := range s.roles {
		addrs := make([]types.Address, 0, len(members))
		for addr := range members {
			addrs = append(addrs, addr)
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		snap.Roles[r] = addrs
	}
	return snap
}

// CheckInvariants verifies sum(balances) == totalSupply <= maxSupply.
// Intended for tests and journal audits.
func (s *State) CheckInvariants() error {
	total := types.ZeroAmount()
	for _, bal := range s.balances {
		if total.AddOverflows(bal) {
			return fmt.Errorf("%w: balance sum overflows", ErrCorruptJournal)
		}
		total = total.Add(bal)
	}
	if !total.Equal(s.supply) {
		return fmt.Errorf("%w: balance sum %s != total supply %s", ErrCorruptJournal, total, s.supply)
	}
	if s.supply.GreaterThan(s.maxSupply) {
		return fmt.Errorf("%w: total supply %s exceeds ceiling %s", ErrCorruptJournal, s.supply, s.maxSupply)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Guards and numbering
// ──────────────────────────────────────────────────

// requireRole is the authorization guard consulted at the top of every
// privileged command.
func (s *State) requireRole(caller types.Address, r role.Role) error {
	if !s.HasRole(r, caller) {
		return ErrUnauthorized
	}
	return nil
}

// exceedsCeiling reports whether growing supply by amount would pass
// the ceiling. An aggregate too large for 256 bits counts as exceeding.
func (s *State) exceedsCeiling(amount types.Amount) bool {
	if s.supply.AddOverflows(amount) {
		return true
	}
	return s.supply.Add(amount).GreaterThan(s.maxSupply)
}

// next numbers ev directly after the current head.
func (s *State) next(ev *event.Event) *event.Event {
	ev.Sequence = s.seq + 1
	return ev
}

// stamp numbers events consecutively after the current head.
func (s *State) stamp(events ...*event.Event) []*event.Event {
	for i, ev := range events {
		ev.Sequence = s.seq + uint64(i) + 1
	}
	return events
}
