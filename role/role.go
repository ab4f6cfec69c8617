// Package role defines the role identifiers used by the ledger's access
// control registry.
package role

// Role names a permission set principals can hold. Roles are open-ended
// strings; the registry stores membership for any role an admin cares to
// grant. Admin and Distributor are the two roles the engine itself
// consults.
type Role string

const (
	// Admin governs membership of every role, including itself, and
	// controls the pause switch and the supply ceiling.
	Admin Role = "admin"

	// Distributor may mint new tokens, singly or in batches.
	Distributor Role = "distributor"
)

func (r Role) String() string {
	return string(r)
}
