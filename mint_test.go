package mint_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/xraph/mint"
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/id"
	"github.com/xraph/mint/plugin"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/store/memory"
	"github.com/xraph/mint/types"
)

const (
	deployer = types.Address("treasury")
	alice    = types.Address("alice")
	bob      = types.Address("bob")
	carol    = types.Address("carol")
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// capturePlugin records every hook invocation it receives.
type capturePlugin struct {
	mu        sync.Mutex
	kinds     []event.Kind
	transfers int
	inits     int
	shutdowns int
}

var (
	_ plugin.OnInit     = (*capturePlugin)(nil)
	_ plugin.OnShutdown = (*capturePlugin)(nil)
	_ plugin.OnEvent    = (*capturePlugin)(nil)
	_ plugin.OnTransfer = (*capturePlugin)(nil)
)

func (p *capturePlugin) Name() string { return "capture" }

func (p *capturePlugin) OnInit(_ context.Context, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inits++
	return nil
}

func (p *capturePlugin) OnShutdown(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdowns++
	return nil
}

func (p *capturePlugin) OnEvent(_ context.Context, ev *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, ev.Kind)
	return nil
}

func (p *capturePlugin) OnTransfer(_ context.Context, _ *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfers++
	return nil
}

func (p *capturePlugin) seen() []event.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Kind{}, p.kinds...)
}

// failingPlugin rejects every event it is offered.
type failingPlugin struct {
	mu    sync.Mutex
	calls int
}

var _ plugin.OnEvent = (*failingPlugin)(nil)

func (p *failingPlugin) Name() string { return "failing" }

func (p *failingPlugin) OnEvent(_ context.Context, _ *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return errors.New("hook rejected the event")
}

func (p *failingPlugin) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// startLedger starts a ledger over a fresh in-memory journal.
func startLedger(t *testing.T, opts ...mint.Option) *mint.Ledger {
	t.Helper()
	opts = append(opts, mint.WithClock(func() time.Time { return testTime }))
	l := mint.New(memory.New(), deployer, opts...)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return l
}

func TestStartSeedsGenesis(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	if got := l.Name(); got != "Mint" {
		t.Errorf("Name() = %q, want %q", got, "Mint")
	}
	if got := l.Symbol(); got != "MNT" {
		t.Errorf("Symbol() = %q, want %q", got, "MNT")
	}
	if got := l.Decimals(); got != 18 {
		t.Errorf("Decimals() = %d, want 18", got)
	}
	if got := l.BalanceOf(deployer); !got.Equal(mint.GenesisSupply) {
		t.Errorf("BalanceOf(deployer) = %s, want %s", got, mint.GenesisSupply)
	}
	if got := l.TotalSupply(); !got.Equal(mint.GenesisSupply) {
		t.Errorf("TotalSupply() = %s, want %s", got, mint.GenesisSupply)
	}
	if got := l.MaxSupply(); !got.Equal(mint.GenesisMaxSupply) {
		t.Errorf("MaxSupply() = %s, want %s", got, mint.GenesisMaxSupply)
	}
	if !l.HasRole(role.Admin, deployer) {
		t.Error("deployer should hold admin after genesis")
	}
	if l.Paused() {
		t.Error("Paused() = true on a fresh ledger")
	}
	if got := l.Sequence(); got != 2 {
		t.Errorf("Sequence() = %d, want 2", got)
	}

	events, err := l.Events(ctx, event.QueryOpts{})
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("journal holds %d events after genesis, want 2", len(events))
	}
}

func TestStartTwice(t *testing.T) {
	l := startLedger(t)
	if err := l.Start(context.Background()); !errors.Is(err, mint.ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestStartNilStore(t *testing.T) {
	l := mint.New(nil, deployer)
	if err := l.Start(context.Background()); !errors.Is(err, mint.ErrNilStore) {
		t.Errorf("Start() error = %v, want ErrNilStore", err)
	}
}

func TestOperationsRequireStart(t *testing.T) {
	ctx := context.Background()
	l := mint.New(memory.New(), deployer)

	if _, err := l.Transfer(ctx, deployer, alice, types.Tokens(1)); !errors.Is(err, mint.ErrNotStarted) {
		t.Errorf("Transfer() before Start error = %v, want ErrNotStarted", err)
	}
	if _, err := l.BatchMint(ctx, deployer, []types.Address{alice}, []types.Amount{types.Tokens(1)}); !errors.Is(err, mint.ErrNotStarted) {
		t.Errorf("BatchMint() before Start error = %v, want ErrNotStarted", err)
	}
	if err := l.Stop(); !errors.Is(err, mint.ErrNotStarted) {
		t.Errorf("Stop() before Start error = %v, want ErrNotStarted", err)
	}
}

func TestStopLifecycle(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	if err := l.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := l.Stop(); !errors.Is(err, mint.ErrNotStarted) {
		t.Errorf("second Stop() error = %v, want ErrNotStarted", err)
	}
	if _, err := l.Transfer(ctx, deployer, alice, types.Tokens(1)); !errors.Is(err, mint.ErrNotStarted) {
		t.Errorf("Transfer() after Stop error = %v, want ErrNotStarted", err)
	}
}

func TestNilCallerRejected(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	one := types.Tokens(1)
	nobody := types.NilAddress
	tests := []struct {
		name string
		call func() error
	}{
		{"transfer", func() error { _, err := l.Transfer(ctx, nobody, alice, one); return err }},
		{"approve", func() error { _, err := l.Approve(ctx, nobody, alice, one); return err }},
		{"transferFrom", func() error { _, err := l.TransferFrom(ctx, nobody, alice, bob, one); return err }},
		{"mint", func() error { _, err := l.Mint(ctx, nobody, alice, one); return err }},
		{"burn", func() error { _, err := l.Burn(ctx, nobody, one); return err }},
		{"burnFrom", func() error { _, err := l.BurnFrom(ctx, nobody, alice, one); return err }},
		{"batchMint", func() error {
			_, err := l.BatchMint(ctx, nobody, []types.Address{alice}, []types.Amount{one})
			return err
		}},
		{"pause", func() error { _, err := l.Pause(ctx, nobody); return err }},
		{"unpause", func() error { _, err := l.Unpause(ctx, nobody); return err }},
		{"grantRole", func() error { _, err := l.GrantRole(ctx, nobody, role.Distributor, alice); return err }},
		{"revokeRole", func() error { _, err := l.RevokeRole(ctx, nobody, role.Distributor, alice); return err }},
		{"renounceRole", func() error { _, err := l.RenounceRole(ctx, nobody, role.Admin, nobody); return err }},
		{"setMaxSupply", func() error { _, err := l.SetMaxSupply(ctx, nobody, one); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var verr mint.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != "sender" {
				t.Errorf("ValidationError field = %q, want %q", verr.Field, "sender")
			}
		})
	}

	// No rejected call reached the journal.
	if got := l.Sequence(); got != 2 {
		t.Errorf("Sequence() = %d after rejected calls, want 2", got)
	}
}

func TestLedgerFlow(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	if _, err := l.GrantRole(ctx, deployer, role.Distributor, alice); err != nil {
		t.Fatalf("GrantRole() error = %v", err)
	}
	if _, err := l.Mint(ctx, alice, bob, types.Tokens(100)); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := l.Approve(ctx, bob, carol, types.Tokens(40)); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := l.TransferFrom(ctx, carol, bob, alice, types.Tokens(15)); err != nil {
		t.Fatalf("TransferFrom() error = %v", err)
	}
	if _, err := l.Burn(ctx, bob, types.Tokens(10)); err != nil {
		t.Fatalf("Burn() error = %v", err)
	}
	if _, err := l.BurnFrom(ctx, carol, bob, types.Tokens(5)); err != nil {
		t.Fatalf("BurnFrom() error = %v", err)
	}

	if got := l.BalanceOf(bob); !got.Equal(types.Tokens(70)) {
		t.Errorf("BalanceOf(bob) = %s, want %s", got, types.Tokens(70))
	}
	if got := l.BalanceOf(alice); !got.Equal(types.Tokens(15)) {
		t.Errorf("BalanceOf(alice) = %s, want %s", got, types.Tokens(15))
	}
	if got := l.Allowance(bob, carol); !got.Equal(types.Tokens(20)) {
		t.Errorf("Allowance(bob, carol) = %s, want %s", got, types.Tokens(20))
	}
	want := mint.GenesisSupply.Add(types.Tokens(85))
	if got := l.TotalSupply(); !got.Equal(want) {
		t.Errorf("TotalSupply() = %s, want %s", got, want)
	}
	if got := l.Sequence(); got != 8 {
		t.Errorf("Sequence() = %d, want 8", got)
	}
}

func TestPauseGateThroughEngine(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	if _, err := l.Pause(ctx, deployer); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if !l.Paused() {
		t.Fatal("Paused() = false after pause")
	}
	if _, err := l.Transfer(ctx, deployer, alice, types.Tokens(1)); !errors.Is(err, mint.ErrContractPaused) {
		t.Errorf("Transfer() while paused error = %v, want ErrContractPaused", err)
	}
	if _, err := l.Approve(ctx, deployer, alice, types.Tokens(1)); err != nil {
		t.Errorf("Approve() while paused error = %v", err)
	}
	if _, err := l.Unpause(ctx, deployer); err != nil {
		t.Fatalf("Unpause() error = %v", err)
	}
	if _, err := l.Transfer(ctx, deployer, alice, types.Tokens(1)); err != nil {
		t.Errorf("Transfer() after unpause error = %v", err)
	}
}

func TestBatchMintThroughEngine(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	if _, err := l.GrantRole(ctx, deployer, role.Distributor, alice); err != nil {
		t.Fatalf("GrantRole() error = %v", err)
	}

	events, err := l.BatchMint(ctx, alice,
		[]types.Address{bob, carol},
		[]types.Amount{types.Tokens(2), types.Tokens(3)},
	)
	if err != nil {
		t.Fatalf("BatchMint() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("BatchMint() produced %d events, want 2", len(events))
	}
	if events[0].Sequence != 4 || events[1].Sequence != 5 {
		t.Errorf("batch sequences = %d, %d, want 4, 5", events[0].Sequence, events[1].Sequence)
	}
	if got := l.Sequence(); got != 5 {
		t.Errorf("Sequence() = %d, want 5", got)
	}

	// A rejected batch journals nothing.
	if _, err := l.BatchMint(ctx, bob, []types.Address{carol}, []types.Amount{types.Tokens(1)}); !errors.Is(err, mint.ErrUnauthorized) {
		t.Errorf("BatchMint() by non-distributor error = %v, want ErrUnauthorized", err)
	}
	if got := l.Sequence(); got != 5 {
		t.Errorf("Sequence() = %d after rejected batch, want 5", got)
	}
}

func TestPluginReceivesEvents(t *testing.T) {
	ctx := context.Background()
	capture := &capturePlugin{}
	l := startLedger(t, mint.WithPlugin(capture))

	if capture.inits != 1 {
		t.Errorf("OnInit calls = %d, want 1", capture.inits)
	}

	if _, err := l.Transfer(ctx, deployer, alice, types.Tokens(1)); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	want := []event.Kind{event.KindTransfer, event.KindRoleGranted, event.KindTransfer}
	if got := capture.seen(); !reflect.DeepEqual(got, want) {
		t.Errorf("captured kinds = %v, want %v", got, want)
	}
	if capture.transfers != 2 {
		t.Errorf("OnTransfer calls = %d, want 2 (genesis mint and transfer)", capture.transfers)
	}

	if err := l.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if capture.shutdowns != 1 {
		t.Errorf("OnShutdown calls = %d, want 1", capture.shutdowns)
	}
}

func TestPluginFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	failing := &failingPlugin{}
	l := startLedger(t, mint.WithPlugin(failing))

	// Hook errors are logged and swallowed; the operation commits.
	ev, err := l.Transfer(ctx, deployer, alice, types.Tokens(1))
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if ev.Sequence != 3 {
		t.Errorf("Transfer() sequence = %d, want 3", ev.Sequence)
	}
	if got := l.BalanceOf(alice); !got.Equal(types.Tokens(1)) {
		t.Errorf("BalanceOf(alice) = %s, want %s", got, types.Tokens(1))
	}
	if got := failing.count(); got != 3 {
		t.Errorf("OnEvent calls = %d, want 3 (genesis pair and transfer)", got)
	}
}

func TestRestartReplaysJournal(t *testing.T) {
	ctx := context.Background()
	journal := memory.New()
	clock := mint.WithClock(func() time.Time { return testTime })

	first := mint.New(journal, deployer, clock)
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := first.GrantRole(ctx, deployer, role.Distributor, alice); err != nil {
		t.Fatalf("GrantRole() error = %v", err)
	}
	if _, err := first.Mint(ctx, alice, bob, types.Tokens(42)); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := first.Pause(ctx, deployer); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	before := first.Snapshot()
	if err := first.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// A second engine over the same journal replays to the same state
	// and must not seed genesis again.
	second := mint.New(journal, deployer, clock)
	if err := second.Start(ctx); err != nil {
		t.Fatalf("restart Start() error = %v", err)
	}

	if !reflect.DeepEqual(before, second.Snapshot()) {
		t.Errorf("replayed state diverged:\nbefore: %+v\nafter: %+v", before, second.Snapshot())
	}
	if got := second.BalanceOf(deployer); !got.Equal(mint.GenesisSupply) {
		t.Errorf("BalanceOf(deployer) = %s after restart, want %s", got, mint.GenesisSupply)
	}
	if !second.Paused() {
		t.Error("pause state lost across restart")
	}
}

func TestSequenceConflictLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	journal := memory.New()
	clock := mint.WithClock(func() time.Time { return testTime })

	active := mint.New(journal, deployer, clock)
	if err := active.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stale := mint.New(journal, deployer, clock)
	if err := stale.Start(ctx); err != nil {
		t.Fatalf("stale Start() error = %v", err)
	}

	// The active engine advances the shared journal past the head the
	// stale engine replayed.
	if _, err := active.Transfer(ctx, deployer, alice, types.Tokens(1)); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	before := stale.Snapshot()
	_, err := stale.Transfer(ctx, deployer, bob, types.Tokens(2))
	if !errors.Is(err, mint.ErrSequenceConflict) {
		t.Fatalf("stale Transfer() error = %v, want ErrSequenceConflict", err)
	}
	if !mint.IsRetryable(err) {
		t.Errorf("IsRetryable(%v) = false, want true", err)
	}

	// The failed append left the stale engine exactly where it was.
	if !reflect.DeepEqual(before, stale.Snapshot()) {
		t.Errorf("failed append mutated state:\nbefore: %+v\nafter:  %+v", before, stale.Snapshot())
	}
	if got := stale.BalanceOf(bob); !got.IsZero() {
		t.Errorf("BalanceOf(bob) = %s after failed append, want 0", got)
	}
	if got := stale.Sequence(); got != 2 {
		t.Errorf("Sequence() = %d after failed append, want 2", got)
	}
}

func TestJournalLookup(t *testing.T) {
	ctx := context.Background()
	l := startLedger(t)

	ev, err := l.Transfer(ctx, deployer, alice, types.Tokens(1))
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	got, err := l.Event(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Event() error = %v", err)
	}
	if got.ID.String() != ev.ID.String() || got.Sequence != ev.Sequence {
		t.Errorf("Event() = %+v, want %+v", got, ev)
	}

	if _, err := l.Event(ctx, id.NewEventID()); !errors.Is(err, mint.ErrEventNotFound) {
		t.Errorf("Event(unknown) error = %v, want ErrEventNotFound", err)
	}

	transfers, err := l.Events(ctx, event.QueryOpts{Kinds: []event.Kind{event.KindTransfer}})
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(transfers) != 2 {
		t.Errorf("Events(transfers) returned %d events, want 2 (genesis mint and transfer)", len(transfers))
	}
}
