package auth

import "fmt"

// Capability is a named boolean derived from identity and subscription.
// The set is closed: route tables reference capabilities by these
// identifiers and unknown names are rejected at configuration load.
type Capability string

const (
	CapIsAuthenticated Capability = "isAuthenticated"
	CapIsOwner         Capability = "isOwner"
	CapIsManager       Capability = "isManager"
	CapIsKitchen       Capability = "isKitchen"
	CapIsRider         Capability = "isRider"
	CapHasPro          Capability = "hasPro"
	CapHasEnterprise   Capability = "hasEnterprise"
)

// knownCapabilities is the closed enumeration consulted by ParseCapability.
var knownCapabilities = map[Capability]struct{}{
	CapIsAuthenticated: {},
	CapIsOwner:         {},
	CapIsManager:       {},
	CapIsKitchen:       {},
	CapIsRider:         {},
	CapHasPro:          {},
	CapHasEnterprise:   {},
}

// ParseCapability validates a capability name against the closed set.
// Unknown names are a configuration error, not a silent false.
func ParseCapability(name string) (Capability, error) {
	c := Capability(name)
	if _, ok := knownCapabilities[c]; !ok {
		return "", fmt.Errorf("unknown capability %q", name)
	}
	return c, nil
}

// CapabilityMap holds the access flags computed for one evaluation.
// It is derived state: never persisted, never cached across an
// identity change.
type CapabilityMap struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	IsOwner         bool `json:"isOwner"`
	IsManager       bool `json:"isManager"`
	IsKitchen       bool `json:"isKitchen"`
	IsRider         bool `json:"isRider"`
	HasPro          bool `json:"hasPro"`
	HasEnterprise   bool `json:"hasEnterprise"`
}

// Has returns the flag for a capability identifier.
func (m CapabilityMap) Has(c Capability) bool {
	switch c {
	case CapIsAuthenticated:
		return m.IsAuthenticated
	case CapIsOwner:
		return m.IsOwner
	case CapIsManager:
		return m.IsManager
	case CapIsKitchen:
		return m.IsKitchen
	case CapIsRider:
		return m.IsRider
	case CapHasPro:
		return m.HasPro
	case CapHasEnterprise:
		return m.HasEnterprise
	}
	return false
}

// ComputeAccess derives the capability map from the current identity
// and subscription snapshot. It is a pure function: absent inputs
// resolve every flag to false rather than erroring, and callers must
// recompute after any identity change because plan and role can move
// without a full reload.
//
// The effective plan prefers the subscription snapshot when present
// and falls back to the plan carried on the identity.
func ComputeAccess(identity *Identity, sub *Subscription) CapabilityMap {
	if identity == nil {
		return CapabilityMap{}
	}

	plan := identity.Plan
	if sub != nil && sub.Plan != "" {
		plan = sub.Plan
	}

	return CapabilityMap{
		IsAuthenticated: true,
		IsOwner:         identity.Role == RoleOwner,
		IsManager:       identity.Role == RoleManager,
		IsKitchen:       identity.Role == RoleKitchen,
		IsRider:         identity.Role == RoleRider,
		HasPro:          plan != "" && plan != PlanFree,
		HasEnterprise:   plan == PlanEnterprise,
	}
}
