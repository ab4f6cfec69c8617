// Package plugin provides an extensible plugin system for the ledger.
// Plugins can hook into lifecycle and journal events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/mint/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called once after the ledger has replayed its journal and is
// ready to accept operations. The ledger is passed as interface{} so
// plugins can type-assert to *mint.Ledger without an import cycle.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger interface{}) error
}

// OnShutdown is called when the ledger is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnEvent is called for every event appended to the journal, regardless
// of kind. Kind-specific hooks fire after it.
type OnEvent interface {
	Plugin
	OnEvent(ctx context.Context, ev *event.Event) error
}

// OnTransfer is called when tokens move between accounts, including
// mints (nil source) and burns (nil destination).
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, ev *event.Event) error
}

// OnApproval is called when an owner sets a spender allowance.
type OnApproval interface {
	Plugin
	OnApproval(ctx context.Context, ev *event.Event) error
}

// OnRoleGranted is called when a role is granted to a principal.
type OnRoleGranted interface {
	Plugin
	OnRoleGranted(ctx context.Context, ev *event.Event) error
}

// OnRoleRevoked is called when a role is revoked or renounced.
type OnRoleRevoked interface {
	Plugin
	OnRoleRevoked(ctx context.Context, ev *event.Event) error
}

// OnPaused is called when the ledger enters the paused state.
type OnPaused interface {
	Plugin
	OnPaused(ctx context.Context, ev *event.Event) error
}

// OnUnpaused is called when the ledger leaves the paused state.
type OnUnpaused interface {
	Plugin
	OnUnpaused(ctx context.Context, ev *event.Event) error
}

// OnMaxSupplyUpdated is called when the supply ceiling changes.
type OnMaxSupplyUpdated interface {
	Plugin
	OnMaxSupplyUpdated(ctx context.Context, ev *event.Event) error
}
