package mint

import (
	"github.com/xraph/mint/event"
	"github.com/xraph/mint/role"
	"github.com/xraph/mint/types"
)

// Re-export common types for convenience so users don't have to import
// the leaf packages.

// Amount is re-exported from types package.
type Amount = types.Amount

// Address is re-exported from types package.
type Address = types.Address

// Role is re-exported from role package.
type Role = role.Role

// Event is re-exported from event package.
type Event = event.Event

// Re-export Amount constructors
var (
	Tokens      = types.Tokens
	Units       = types.Units
	ZeroAmount  = types.ZeroAmount
	ParseAmount = types.ParseAmount
)

// Re-export the null address and the built-in roles
const (
	NilAddress = types.NilAddress

	RoleAdmin       = role.Admin
	RoleDistributor = role.Distributor
)
