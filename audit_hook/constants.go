package audithook

// Action constants for audit events.
const (
	// Token actions
	ActionTokenTransferred = "token.transferred"
	ActionTokenMinted      = "token.minted"
	ActionTokenBurned      = "token.burned"
	ActionTokenApproved    = "token.approved"

	// Access control actions
	ActionRoleGranted = "role.granted"
	ActionRoleRevoked = "role.revoked"

	// Pause actions
	ActionPauseEngaged  = "pause.engaged"
	ActionPauseReleased = "pause.released"

	// Supply policy actions
	ActionCeilingUpdated = "ceiling.updated"
)

// Resource constants for audit events.
const (
	ResourceToken  = "token"
	ResourceRole   = "role"
	ResourceLedger = "ledger"
	ResourceSupply = "supply"
)

// Category constants for audit events.
const (
	CategoryToken   = "token"
	CategoryAccess  = "access"
	CategoryControl = "control"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
