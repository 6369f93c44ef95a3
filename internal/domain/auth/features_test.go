package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasFeature(t *testing.T) {
	assert.True(t, HasFeature(PlanFree, "orders.basic"))
	assert.False(t, HasFeature(PlanFree, "orders.realtime"))

	assert.True(t, HasFeature(PlanPro, "orders.realtime"))
	assert.True(t, HasFeature(PlanPro, "devices"))
	assert.False(t, HasFeature(PlanPro, "sso"))

	// The wildcard grants everything, known or not.
	assert.True(t, HasFeature(PlanEnterprise, "orders.realtime"))
	assert.True(t, HasFeature(PlanEnterprise, "anything-at-all"))

	assert.False(t, HasFeature(Plan("TRIAL"), "orders.basic"))
}

func TestFeaturesUnknownPlanFailsClosed(t *testing.T) {
	assert.Equal(t, Features(PlanFree), Features(Plan("TRIAL")))
}

func TestFeaturesReturnsCopy(t *testing.T) {
	got := Features(PlanPro)
	got[0] = "mutated"
	assert.Equal(t, "orders.basic", Features(PlanPro)[0])
}

func TestPlanLimits(t *testing.T) {
	free := PlanLimits(PlanFree)
	assert.NotNil(t, free.MaxActiveOrders)
	assert.Equal(t, 10, *free.MaxActiveOrders)
	assert.False(t, free.Realtime)

	pro := PlanLimits(PlanPro)
	assert.Equal(t, 100, *pro.MaxActiveOrders)
	assert.True(t, pro.Realtime)

	ent := PlanLimits(PlanEnterprise)
	assert.Nil(t, ent.MaxActiveOrders)
	assert.True(t, ent.Realtime)

	// Unknown plans get the FREE ceilings.
	assert.Equal(t, free, PlanLimits(Plan("TRIAL")))
}
