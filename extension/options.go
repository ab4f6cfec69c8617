package extension

import (
	"github.com/xraph/mint"
	"github.com/xraph/mint/plugin"
	"github.com/xraph/mint/store"
	"github.com/xraph/mint/types"
)

// Option configures the mint Forge extension.
type Option func(*Extension)

// WithStore sets the journal store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a mint.Option through to the underlying engine.
func WithLedgerOption(opt mint.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, mint.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDeployer sets the genesis deployer address.
func WithDeployer(addr types.Address) Option {
	return func(e *Extension) { e.config.Deployer = string(addr) }
}

// WithDisableMigrate prevents auto-start on forge start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
