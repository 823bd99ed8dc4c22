package model

import "fmt"

// Capability is a named permission a principal may hold.
type Capability string

const (
	// CapabilityMinter allows calling reward ledger mint operations.
	CapabilityMinter Capability = "minter"
	// CapabilityAdmin allows granting/revoking capabilities and awarding
	// manual badges.
	CapabilityAdmin Capability = "admin"
	// CapabilityPauser allows pausing/unpausing the reward ledger.
	CapabilityPauser Capability = "pauser"
)

// ValidateCapability checks the capability is a known one.
func ValidateCapability(c Capability) error {
	switch c {
	case CapabilityMinter, CapabilityAdmin, CapabilityPauser:
		return nil
	}
	return fmt.Errorf("unknown capability %q: %w", c, ErrNotValid)
}

// Grant is one (principal, capability) entry of the access control set.
type Grant struct {
	Principal  string
	Capability Capability
}
