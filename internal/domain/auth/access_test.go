package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	for _, name := range []string{
		"isAuthenticated", "isOwner", "isManager", "isKitchen", "isRider", "hasPro", "hasEnterprise",
	} {
		c, err := ParseCapability(name)
		require.NoError(t, err)
		assert.Equal(t, Capability(name), c)
	}
}

func TestParseCapabilityUnknown(t *testing.T) {
	for _, name := range []string{"", "isAdmin", "IsOwner", "haspro"} {
		_, err := ParseCapability(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestComputeAccessNilIdentity(t *testing.T) {
	access := ComputeAccess(nil, &Subscription{Plan: PlanEnterprise})

	assert.Equal(t, CapabilityMap{}, access)
	assert.False(t, access.Has(CapIsAuthenticated))
	assert.False(t, access.Has(CapHasEnterprise))
}

func TestComputeAccessRoles(t *testing.T) {
	tests := []struct {
		role Role
		want Capability
	}{
		{RoleOwner, CapIsOwner},
		{RoleManager, CapIsManager},
		{RoleKitchen, CapIsKitchen},
		{RoleRider, CapIsRider},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			access := ComputeAccess(&Identity{ID: 1, Role: tt.role, Plan: PlanFree}, nil)

			assert.True(t, access.Has(CapIsAuthenticated))
			assert.True(t, access.Has(tt.want))

			// Role flags are mutually exclusive.
			for _, other := range []Capability{CapIsOwner, CapIsManager, CapIsKitchen, CapIsRider} {
				if other == tt.want {
					continue
				}
				assert.False(t, access.Has(other), "unexpected %s", other)
			}
		})
	}
}

func TestComputeAccessPlans(t *testing.T) {
	tests := []struct {
		name          string
		identityPlan  Plan
		sub           *Subscription
		wantPro       bool
		wantEnterpise bool
	}{
		{name: "free", identityPlan: PlanFree},
		{name: "pro", identityPlan: PlanPro, wantPro: true},
		{name: "enterprise", identityPlan: PlanEnterprise, wantPro: true, wantEnterpise: true},
		{
			name:         "subscription overrides identity",
			identityPlan: PlanFree,
			sub:          &Subscription{Plan: PlanPro, Status: SubscriptionActive},
			wantPro:      true,
		},
		{
			name:         "empty subscription plan falls back to identity",
			identityPlan: PlanPro,
			sub:          &Subscription{},
			wantPro:      true,
		},
		{
			name:         "subscription downgrade wins",
			identityPlan: PlanEnterprise,
			sub:          &Subscription{Plan: PlanFree},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := ComputeAccess(&Identity{ID: 7, Role: RoleOwner, Plan: tt.identityPlan}, tt.sub)

			assert.Equal(t, tt.wantPro, access.Has(CapHasPro))
			assert.Equal(t, tt.wantEnterpise, access.Has(CapHasEnterprise))
		})
	}
}

func TestComputeAccessRecomputesAfterChange(t *testing.T) {
	identity := &Identity{ID: 1, Role: RoleManager, Plan: PlanFree}

	before := ComputeAccess(identity, nil)
	assert.False(t, before.Has(CapHasPro))

	identity.Plan = PlanPro
	after := ComputeAccess(identity, nil)
	assert.True(t, after.Has(CapHasPro))
	// The earlier map is a stale snapshot, not a live view.
	assert.False(t, before.Has(CapHasPro))
}

func TestCapabilityMapHasUnknown(t *testing.T) {
	m := CapabilityMap{IsAuthenticated: true}
	assert.False(t, m.Has(Capability("isAdmin")))
}
