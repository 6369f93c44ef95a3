package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		wantErr string
	}{
		{
			name: "public route needs nothing",
			desc: Descriptor{Path: "GET /healthz"},
		},
		{
			name: "guarded route with capability",
			desc: Descriptor{
				Path:   "GET /api/devices",
				Access: domainauth.CapIsAuthenticated,
				Guards: []GuardStage{StageAuthenticate},
			},
		},
		{
			name: "plan gate fully declared",
			desc: Descriptor{
				Path:         "GET /api/realtime/token",
				Access:       domainauth.CapIsAuthenticated,
				RequiredPlan: domainauth.PlanPro,
				Guards:       []GuardStage{StageAuthenticate, StagePlan},
			},
		},
		{
			name:    "empty path",
			desc:    Descriptor{},
			wantErr: "empty path",
		},
		{
			name: "guarded route without capability",
			desc: Descriptor{
				Path:   "GET /api/devices",
				Guards: []GuardStage{StageAuthenticate},
			},
			wantErr: "must declare an access capability",
		},
		{
			name: "unknown capability",
			desc: Descriptor{
				Path:   "GET /api/devices",
				Access: domainauth.Capability("isAdmin"),
				Guards: []GuardStage{StageAuthenticate},
			},
			wantErr: `unknown capability "isAdmin"`,
		},
		{
			name: "unknown guard stage",
			desc: Descriptor{
				Path:   "GET /api/devices",
				Access: domainauth.CapIsAuthenticated,
				Guards: []GuardStage{GuardStage("audit")},
			},
			wantErr: `unknown guard stage "audit"`,
		},
		{
			name: "plan stage without authenticate stage",
			desc: Descriptor{
				Path:         "GET /api/realtime/token",
				Access:       domainauth.CapIsOwner,
				RequiredPlan: domainauth.PlanPro,
				Guards:       []GuardStage{StagePlan},
			},
			wantErr: "must include the authenticate stage",
		},
		{
			name: "required plan without plan stage",
			desc: Descriptor{
				Path:         "GET /api/realtime/token",
				Access:       domainauth.CapIsAuthenticated,
				RequiredPlan: domainauth.PlanPro,
				Guards:       []GuardStage{StageAuthenticate},
			},
			wantErr: "requiredPlan set without the plan guard stage",
		},
		{
			name: "plan stage without required plan",
			desc: Descriptor{
				Path:   "GET /api/realtime/token",
				Access: domainauth.CapIsAuthenticated,
				Guards: []GuardStage{StageAuthenticate, StagePlan},
			},
			wantErr: "plan guard stage without requiredPlan",
		},
		{
			name: "unknown plan",
			desc: Descriptor{
				Path:         "GET /api/realtime/token",
				Access:       domainauth.CapIsAuthenticated,
				RequiredPlan: domainauth.Plan("TRIAL"),
				Guards:       []GuardStage{StageAuthenticate, StagePlan},
			},
			wantErr: `unknown plan "TRIAL"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAllRejectsDuplicates(t *testing.T) {
	routes := []Descriptor{
		{Path: "GET /api/plan", Access: domainauth.CapIsAuthenticated, Guards: []GuardStage{StageAuthenticate}},
		{Path: "GET /api/plan", Access: domainauth.CapIsAuthenticated, Guards: []GuardStage{StageAuthenticate}},
	}

	err := ValidateAll(routes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestOrderedGuardsPrecedence(t *testing.T) {
	// Declared plan-first; evaluation still authenticates first.
	d := Descriptor{
		Path:         "GET /api/realtime/token",
		Access:       domainauth.CapIsAuthenticated,
		RequiredPlan: domainauth.PlanPro,
		Guards:       []GuardStage{StagePlan, StageAuthenticate},
	}

	got := d.OrderedGuards()
	require.Equal(t, []GuardStage{StageAuthenticate, StagePlan}, got)

	// The descriptor's declared order is untouched.
	assert.Equal(t, []GuardStage{StagePlan, StageAuthenticate}, d.Guards)
}

func TestPlanSatisfies(t *testing.T) {
	tests := []struct {
		have domainauth.Plan
		need domainauth.Plan
		want bool
	}{
		{domainauth.PlanFree, "", true},
		{"", "", true},
		{domainauth.PlanFree, domainauth.PlanFree, true},
		{"", domainauth.PlanFree, false},
		{domainauth.PlanFree, domainauth.PlanPro, false},
		{domainauth.PlanPro, domainauth.PlanPro, true},
		{domainauth.PlanEnterprise, domainauth.PlanPro, true},
		{domainauth.PlanPro, domainauth.PlanEnterprise, false},
		{domainauth.PlanEnterprise, domainauth.PlanEnterprise, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PlanSatisfies(tt.have, tt.need),
			"have=%q need=%q", tt.have, tt.need)
	}
}
