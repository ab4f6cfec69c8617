package mint

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
	"github.com/xraph/mint/plugin"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/store"
	"github.com/xraph/mint/types"
)

// replayBatchSize caps how many events one replay read pulls at a time.
const replayBatchSize = 512

// Ledger is the token ledger engine. It serializes every mutating call,
// persists the events the call produces to the journal store, and only
// then folds them into the in-memory state, so the journal and the
// state can never disagree. Views reflect the replayed state and return
// zero values before Start.
type Ledger struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	clock    func() time.Time
	deployer types.Address

	mu      sync.RWMutex
	state   *State
	started bool
}

// New creates a Ledger backed by s. deployer receives the genesis
// supply and the admin role when Start finds an empty journal; an
// existing journal is replayed as is.
func New(s store.Store, deployer types.Address, opts ...Option) *Ledger {
	l := &Ledger{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
		deployer: deployer,
		state:    NewState(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock overrides the event timestamp source. Intended for tests
// and deterministic replays.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// Start migrates the journal store, replays the journal into memory,
// and seeds the genesis events when the journal is empty.
func (l *Ledger) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	if l.store == nil {
		l.mu.Unlock()
		return ErrNilStore
	}

	if err := l.store.Migrate(ctx); err != nil {
		l.mu.Unlock()
		return err
	}
	if err := l.replay(ctx); err != nil {
		l.mu.Unlock()
		return err
	}

	var seeded []*event.Event
	if l.state.Sequence() == 0 {
		events, err := l.state.Genesis(l.deployer, l.clock())
		if err != nil {
			l.mu.Unlock()
			return err
		}
		if err := l.append(ctx, events); err != nil {
			l.mu.Unlock()
			return err
		}
		seeded = events
	}

	if err := l.state.CheckInvariants(); err != nil {
		l.mu.Unlock()
		return err
	}

	l.started = true
	sequence := l.state.Sequence()
	supply := l.state.TotalSupply()
	paused := l.state.Paused()
	l.mu.Unlock()

	l.plugins.EmitInit(ctx, l)
	for _, ev := range seeded {
		l.plugins.EmitEvent(ctx, ev)
	}

	l.logger.Info("mint ledger started",
		"sequence", sequence,
		"supply", supply,
		"paused", paused,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return ErrNotStarted
	}
	l.started = false
	l.mu.Unlock()

	l.plugins.EmitShutdown(context.Background())

	return l.store.Close()
}

// replay folds the whole journal into a fresh state, in batches.
func (l *Ledger) replay(ctx context.Context) error {
	state := NewState()
	for {
		events, err := l.store.Read(ctx, state.Sequence()+1, replayBatchSize)
		if err != nil {
			return fmt.Errorf("mint: replay read: %w", err)
		}
		if len(events) == 0 {
			break
		}
		if err := state.Replay(events); err != nil {
			return err
		}
	}
	l.state = state
	return nil
}

// append persists events and folds them into memory. Callers hold the
// write lock. When the append fails the in-memory state is untouched.
func (l *Ledger) append(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := l.store.Append(ctx, l.state.Sequence(), events); err != nil {
		return fmt.Errorf("mint: append events: %w", err)
	}
	for _, ev := range events {
		l.state.Apply(ev)
	}
	return nil
}

// submit runs one command under the write lock, persists its event, and
// emits it to plugins after the lock is released. Hook invocation order
// across concurrent submitters is not guaranteed; Event.Sequence is the
// authoritative order.
func (l *Ledger) submit(ctx context.Context, cmd func(*State, time.Time) (*event.Event, error)) (*event.Event, error) {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return nil, ErrNotStarted
	}
	ev, err := cmd(l.state, l.clock())
	if err == nil {
		err = l.append(ctx, []*event.Event{ev})
	}
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	l.plugins.EmitEvent(ctx, ev)
	return ev, nil
}

// validateCaller rejects the null address as an acting principal. A nil
// sender would make journal records ambiguous with the mint and burn
// markers.
func validateCaller(sender types.Address) error {
	if sender.IsNil() {
		return ValidationError{Field: "sender", Message: "caller address is required"}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Ledger core
// ──────────────────────────────────────────────────

// Transfer moves amount from sender to to. A self transfer is a legal
// no-op that still produces an event.
func (l *Ledger) Transfer(ctx context.Context, sender, to types.Address, amount types.Amount) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.Transfer(sender, to, amount, now)
	})
}

// Approve sets spender's allowance from owner to exactly amount,
// replacing any prior value.
func (l *Ledger) Approve(ctx context.Context, owner, spender types.Address, amount types.Amount) (*event.Event, error) {
	if err := validateCaller(owner); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.Approve(owner, spender, amount, now)
	})
}

// TransferFrom moves amount from owner to to on spender's authority,
// consuming that much of spender's allowance.
func (l *Ledger) TransferFrom(ctx context.Context, spender, owner, to types.Address, amount types.Amount) (*event.Event, error) {
	if err := validateCaller(spender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.TransferFrom(spender, owner, to, amount, now)
	})
}

// Mint credits amount of new supply to to. sender must hold the
// Distributor role.
func (l *Ledger) Mint(ctx context.Context, sender, to types.Address, amount types.Amount) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.Mint(sender, to, amount, now)
	})
}

// Burn destroys amount of sender's own tokens.
func (l *Ledger) Burn(ctx context.Context, sender types.Address, amount types.Amount) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.Burn(sender, amount, now)
	})
}

// BurnFrom destroys amount of owner's tokens on spender's authority,
// consuming that much of spender's allowance.
func (l *Ledger) BurnFrom(ctx context.Context, spender, owner types.Address, amount types.Amount) (*event.Event, error) {
	if err := validateCaller(spender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.BurnFrom(spender, owner, amount, now)
	})
}

// BatchMint credits new supply to several recipients in one atomic
// call: either every recipient is credited or none is. One event is
// produced per recipient, in argument order.
func (l *Ledger) BatchMint(ctx context.Context, sender types.Address, recipients []types.Address, amounts []types.Amount) ([]*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return nil, ErrNotStarted
	}
	events, err := l.state.BatchMint(sender, recipients, amounts, l.clock())
	if err == nil {
		err = l.append(ctx, events)
	}
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		l.plugins.EmitEvent(ctx, ev)
	}
	return events, nil
}

// ──────────────────────────────────────────────────
// Pause gate
// ──────────────────────────────────────────────────

// Pause engages the pause switch, blocking balance-mutating operations.
// Admin only.
func (l *Ledger) Pause(ctx context.Context, sender types.Address) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.Pause(sender, now)
	})
}

// Unpause releases the pause switch. Admin only.
func (l *Ledger) Unpause(ctx context.Context, sender types.Address) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.Unpause(sender, now)
	})
}

// ──────────────────────────────────────────────────
// Access control registry
// ──────────────────────────────────────────────────

// GrantRole adds principal to r. Admin only; repeat grants succeed and
// are recorded again.
func (l *Ledger) GrantRole(ctx context.Context, sender types.Address, r role.Role, principal types.Address) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.GrantRole(sender, r, principal, now)
	})
}

// RevokeRole removes principal from r. Admin only; revoking an unheld
// role succeeds and is recorded anyway.
func (l *Ledger) RevokeRole(ctx context.Context, sender types.Address, r role.Role, principal types.Address) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.RevokeRole(sender, r, principal, now)
	})
}

// RenounceRole lets a principal drop one of its own roles; sender must
// equal principal.
func (l *Ledger) RenounceRole(ctx context.Context, sender types.Address, r role.Role, principal types.Address) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.RenounceRole(sender, r, principal, now)
	})
}

// ──────────────────────────────────────────────────
// Supply policy
// ──────────────────────────────────────────────────

// SetMaxSupply moves the supply ceiling. Admin only; the ceiling may be
// raised or lowered freely as long as it stays at or above the current
// total supply.
func (l *Ledger) SetMaxSupply(ctx context.Context, sender types.Address, next types.Amount) (*event.Event, error) {
	if err := validateCaller(sender); err != nil {
		return nil, err
	}
	return l.submit(ctx, func(s *State, now time.Time) (*event.Event, error) {
		return s.SetMaxSupply(sender, next, now)
	})
}

// ──────────────────────────────────────────────────
// Views
// ──────────────────────────────────────────────────

// Name returns the token name.
func (l *Ledger) Name() string { return TokenName }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return TokenSymbol }

// Decimals returns the number of fractional digits, fixed at 18.
func (l *Ledger) Decimals() uint8 { return TokenDecimals }

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.TotalSupply()
}

// MaxSupply returns the current supply ceiling.
func (l *Ledger) MaxSupply() types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.MaxSupply()
}

// BalanceOf returns addr's balance. Unknown addresses hold zero.
func (l *Ledger) BalanceOf(addr types.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.BalanceOf(addr)
}

// Allowance returns what spender may still draw from owner's balance.
func (l *Ledger) Allowance(owner, spender types.Address) types.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Allowance(owner, spender)
}

// Paused reports whether the pause switch is engaged.
func (l *Ledger) Paused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Paused()
}

// HasRole reports whether principal holds r.
func (l *Ledger) HasRole(r role.Role, principal types.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.HasRole(r, principal)
}

// Sequence returns the sequence number of the journal head.
func (l *Ledger) Sequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Sequence()
}

// Snapshot copies the full ledger state for inspection.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Snapshot()
}

// ──────────────────────────────────────────────────
// Journal
// ──────────────────────────────────────────────────

// Events queries the journal. Results are in ascending sequence order.
func (l *Ledger) Events(ctx context.Context, opts event.QueryOpts) ([]*event.Event, error) {
	return l.store.Query(ctx, opts)
}

// Event returns one journal record by ID.
func (l *Ledger) Event(ctx context.Context, eventID id.EventID) (*event.Event, error) {
	return l.store.Get(ctx, eventID)
}
