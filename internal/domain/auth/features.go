package auth

// Plan feature matrix and limits. Mirrors what the billing backend
// advertises so the gateway can answer feature checks from hints
// without a round trip. The "*" entry grants every feature.

var featureMatrix = map[Plan][]string{
	PlanFree:       {"orders.basic"},
	PlanPro:        {"orders.basic", "orders.realtime", "analytics", "devices"},
	PlanEnterprise: {"*"},
}

// HasFeature reports whether the plan includes the named feature.
// Unknown plans have no features.
func HasFeature(plan Plan, feature string) bool {
	features, ok := featureMatrix[plan]
	if !ok {
		return false
	}
	for _, f := range features {
		if f == "*" || f == feature {
			return true
		}
	}
	return false
}

// Features returns the feature list for a plan. Unknown plans get the
// FREE features (fail-closed).
func Features(plan Plan) []string {
	features, ok := featureMatrix[plan]
	if !ok {
		features = featureMatrix[PlanFree]
	}
	out := make([]string, len(features))
	copy(out, features)
	return out
}

// Limits describes per-plan operational ceilings. A nil MaxActiveOrders
// means unlimited.
type Limits struct {
	MaxActiveOrders *int
	Realtime        bool
}

var planLimits = map[Plan]Limits{
	PlanFree:       {MaxActiveOrders: intPtr(10), Realtime: false},
	PlanPro:        {MaxActiveOrders: intPtr(100), Realtime: true},
	PlanEnterprise: {MaxActiveOrders: nil, Realtime: true},
}

// PlanLimits returns the operational limits for a plan. Unknown plans
// get the FREE limits (fail-closed).
func PlanLimits(plan Plan) Limits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[PlanFree]
}

func intPtr(i int) *int { return &i }
