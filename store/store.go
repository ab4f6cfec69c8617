package store

import (
	"context"

	"github.com/xraph/mint/event"
)

// Store is the unified storage interface for ledger backends. It embeds
// the journal contract and adds migration and connection lifecycle
// methods.
type Store interface {
	event.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
