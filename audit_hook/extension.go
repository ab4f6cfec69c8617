// Package audithook bridges ledger journal events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/mint/event"
	"github.com/xraph/mint/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnTransfer         = (*Extension)(nil)
	_ plugin.OnApproval         = (*Extension)(nil)
	_ plugin.OnRoleGranted      = (*Extension)(nil)
	_ plugin.OnRoleRevoked      = (*Extension)(nil)
	_ plugin.OnPaused           = (*Extension)(nil)
	_ plugin.OnUnpaused         = (*Extension)(nil)
	_ plugin.OnMaxSupplyUpdated = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger journal events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Balance movement hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer. Mints and burns use their
// own actions so supply changes stand out in the trail.
func (e *Extension) OnTransfer(ctx context.Context, ev *event.Event) error {
	action := ActionTokenTransferred
	switch {
	case ev.IsMint():
		action = ActionTokenMinted
	case ev.IsBurn():
		action = ActionTokenBurned
	}

	kv := []any{
		"sequence", ev.Sequence,
		"from", string(ev.From),
		"to", string(ev.To),
		"amount", ev.Amount.String(),
		"sender", string(ev.Sender),
	}
	if ev.UsedAllowance() {
		kv = append(kv, "spender", string(ev.Spender))
	}

	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceToken, ev.ID.String(), CategoryToken, nil, kv...)
}

// OnApproval implements plugin.OnApproval.
func (e *Extension) OnApproval(ctx context.Context, ev *event.Event) error {
	return e.record(ctx, ActionTokenApproved, SeverityInfo, OutcomeSuccess,
		ResourceToken, ev.ID.String(), CategoryToken, nil,
		"sequence", ev.Sequence,
		"owner", string(ev.Owner),
		"spender", string(ev.Spender),
		"amount", ev.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Access control hooks
// ──────────────────────────────────────────────────

// OnRoleGranted implements plugin.OnRoleGranted.
func (e *Extension) OnRoleGranted(ctx context.Context, ev *event.Event) error {
	return e.record(ctx, ActionRoleGranted, SeverityInfo, OutcomeSuccess,
		ResourceRole, ev.ID.String(), CategoryAccess, nil,
		"sequence", ev.Sequence,
		"role", string(ev.Role),
		"principal", string(ev.Principal),
		"sender", string(ev.Sender),
	)
}

// OnRoleRevoked implements plugin.OnRoleRevoked. Revocations are
// warnings: losing a role is the kind of change operators review.
func (e *Extension) OnRoleRevoked(ctx context.Context, ev *event.Event) error {
	kv := []any{
		"sequence", ev.Sequence,
		"role", string(ev.Role),
		"principal", string(ev.Principal),
		"sender", string(ev.Sender),
	}
	if ev.Sender == ev.Principal {
		kv = append(kv, "renounced", true)
	}

	return e.record(ctx, ActionRoleRevoked, SeverityWarning, OutcomeSuccess,
		ResourceRole, ev.ID.String(), CategoryAccess, nil, kv...)
}

// ──────────────────────────────────────────────────
// Pause and supply hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (e *Extension) OnPaused(ctx context.Context, ev *event.Event) error {
	return e.record(ctx, ActionPauseEngaged, SeverityWarning, OutcomeSuccess,
		ResourceLedger, ev.ID.String(), CategoryControl, nil,
		"sequence", ev.Sequence,
		"sender", string(ev.Sender),
	)
}

// OnUnpaused implements plugin.OnUnpaused.
func (e *Extension) OnUnpaused(ctx context.Context, ev *event.Event) error {
	return e.record(ctx, ActionPauseReleased, SeverityInfo, OutcomeSuccess,
		ResourceLedger, ev.ID.String(), CategoryControl, nil,
		"sequence", ev.Sequence,
		"sender", string(ev.Sender),
	)
}

// OnMaxSupplyUpdated implements plugin.OnMaxSupplyUpdated.
func (e *Extension) OnMaxSupplyUpdated(ctx context.Context, ev *event.Event) error {
	return e.record(ctx, ActionCeilingUpdated, SeverityWarning, OutcomeSuccess,
		ResourceSupply, ev.ID.String(), CategoryControl, nil,
		"sequence", ev.Sequence,
		"sender", string(ev.Sender),
		"prev", ev.Prev.String(),
		"next", ev.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
