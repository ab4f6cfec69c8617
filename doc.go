// Package mint provides a supply-capped, role-gated fungible token ledger
// for Go applications.
//
// Mint is designed as a library, not a service. Import it directly into your
// Go application and hand it a journal store. It provides:
//
//   - Balances and delegated allowances with full 256-bit integer arithmetic
//   - Minting and burning under a movable supply ceiling
//   - Role-gated administration (admin, distributor) with renounceable roles
//   - An emergency pause switch that freezes balance movement
//   - An append-only event journal that deterministically replays to state
//   - Pluggable journal backends (memory, SQLite, PostgreSQL, MongoDB)
//   - Comprehensive audit trail via Chronicle
//   - Production metrics via MetricFactory
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/xraph/mint"
//	    "github.com/xraph/mint/store/memory"
//	    "github.com/xraph/mint/types"
//	)
//
//	// The deployer receives the genesis supply and the admin role.
//	l := mint.New(memory.New(), types.Address("acct_treasury"))
//
//	// Start the ledger (migrates, replays, seeds genesis if empty)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Balances move through transfers; every mutation is journaled:
//
//	ev, err := l.Transfer(ctx, sender, recipient, types.Tokens(25))
//
// Allowances let a spender move tokens on an owner's behalf:
//
//	l.Approve(ctx, owner, spender, types.Tokens(100))
//	l.TransferFrom(ctx, spender, owner, recipient, types.Tokens(40))
//
// Supply changes are gated by the distributor role and the ceiling:
//
//	l.GrantRole(ctx, admin, role.Distributor, issuer)
//	l.Mint(ctx, issuer, recipient, types.Tokens(1_000))
//	l.Burn(ctx, holder, types.Tokens(10))
//
// Admins can freeze all balance movement in an emergency:
//
//	l.Pause(ctx, admin)   // transfers, mints, burns now fail
//	l.Unpause(ctx, admin) // back to normal
//
// # Consistency
//
// Every mutating call is serialized, validated against the current state,
// and appended to the journal before it becomes visible. Replaying the
// journal from sequence one reproduces the exact same state, which is how
// Start recovers after a restart. The total supply always equals the sum
// of all balances and never exceeds the ceiling.
//
// All token amounts use 256-bit integer arithmetic to avoid floating-point
// precision issues. The Amount type counts base units; one whole token is
// 10^18 base units.
//
// # Integration
//
// Mint integrates with the Forgery ecosystem:
//
//   - Forge: application extension with DI registration and lifecycle
//   - Chronicle: audit trail for all journal events via audit_hook
//   - Grove: SQLite, PostgreSQL, and MongoDB journal backends
//
// # TypeID
//
// Journal events use TypeID for globally unique, type-safe identifiers:
//
//	evt_01h2xcejqtf2nbrexx3vqjhp41  // Event ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package mint
