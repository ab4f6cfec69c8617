// Package observability provides a metrics extension for the mint
// ledger that records journal event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/mint/event"
	"github.com/xraph/mint/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnEvent            = (*MetricsExtension)(nil)
	_ plugin.OnTransfer         = (*MetricsExtension)(nil)
	_ plugin.OnApproval         = (*MetricsExtension)(nil)
	_ plugin.OnRoleGranted      = (*MetricsExtension)(nil)
	_ plugin.OnRoleRevoked      = (*MetricsExtension)(nil)
	_ plugin.OnPaused           = (*MetricsExtension)(nil)
	_ plugin.OnUnpaused         = (*MetricsExtension)(nil)
	_ plugin.OnMaxSupplyUpdated = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records journal-wide lifecycle metrics.
// Register it as a ledger plugin to automatically track token activity.
type MetricsExtension struct {
	factory MetricFactory

	// Journal metrics
	EventsJournaled Counter
	EmitLag         Histogram

	// Balance movement metrics
	Transfers       Counter
	Mints           Counter
	Burns           Counter
	AllowanceSpends Counter
	Approvals       Counter

	// Access control metrics
	RolesGranted Counter
	RolesRevoked Counter

	// Pause and supply metrics
	PauseEngaged   Counter
	PauseReleased  Counter
	CeilingUpdated Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Journal metrics
		EventsJournaled: factory.Counter("mint.events.journaled"),
		EmitLag:         factory.Histogram("mint.events.emit_lag_ms"),

		// Balance movement metrics
		Transfers:       factory.Counter("mint.transfer.recorded"),
		Mints:           factory.Counter("mint.supply.minted"),
		Burns:           factory.Counter("mint.supply.burned"),
		AllowanceSpends: factory.Counter("mint.transfer.allowance_spends"),
		Approvals:       factory.Counter("mint.approval.recorded"),

		// Access control metrics
		RolesGranted: factory.Counter("mint.role.granted"),
		RolesRevoked: factory.Counter("mint.role.revoked"),

		// Pause and supply metrics
		PauseEngaged:   factory.Counter("mint.pause.engaged"),
		PauseReleased:  factory.Counter("mint.pause.released"),
		CeilingUpdated: factory.Counter("mint.ceiling.updated"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnEvent implements plugin.OnEvent.
func (m *MetricsExtension) OnEvent(_ context.Context, ev *event.Event) error {
	m.EventsJournaled.Inc()
	m.EmitLag.Observe(float64(time.Since(ev.Timestamp).Milliseconds()))
	return nil
}

// ──────────────────────────────────────────────────
// Balance movement hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, ev *event.Event) error {
	switch {
	case ev.IsMint():
		m.Mints.Inc()
	case ev.IsBurn():
		m.Burns.Inc()
	default:
		m.Transfers.Inc()
	}
	if ev.UsedAllowance() {
		m.AllowanceSpends.Inc()
	}
	return nil
}

// OnApproval implements plugin.OnApproval.
func (m *MetricsExtension) OnApproval(_ context.Context, _ *event.Event) error {
	m.Approvals.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Access control hooks
// ──────────────────────────────────────────────────

// OnRoleGranted implements plugin.OnRoleGranted.
func (m *MetricsExtension) OnRoleGranted(_ context.Context, _ *event.Event) error {
	m.RolesGranted.Inc()
	return nil
}

// OnRoleRevoked implements plugin.OnRoleRevoked.
func (m *MetricsExtension) OnRoleRevoked(_ context.Context, _ *event.Event) error {
	m.RolesRevoked.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Pause and supply hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (m *MetricsExtension) OnPaused(_ context.Context, _ *event.Event) error {
	m.PauseEngaged.Inc()
	return nil
}

// OnUnpaused implements plugin.OnUnpaused.
func (m *MetricsExtension) OnUnpaused(_ context.Context, _ *event.Event) error {
	m.PauseReleased.Inc()
	return nil
}

// OnMaxSupplyUpdated implements plugin.OnMaxSupplyUpdated.
func (m *MetricsExtension) OnMaxSupplyUpdated(_ context.Context, _ *event.Event) error {
	m.CeilingUpdated.Inc()
	return nil
}
