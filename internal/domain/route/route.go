package route

// Package route declares the static route descriptors consumed by the
// guard pipeline. Descriptors are validated once at startup so that a
// misconfigured route (unknown capability, plan requirement without its
// guard) fails loudly instead of silently granting or denying access.

import (
	"fmt"
	"sort"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

// GuardStage names one stage of the guard pipeline. Stages have fixed
// precedence: authentication always evaluates before the plan check,
// regardless of the order they are declared on a route.
type GuardStage string

const (
	StageAuthenticate GuardStage = "authenticate"
	StagePlan         GuardStage = "plan"
)

// stagePrecedence orders guard evaluation. Lower runs first.
var stagePrecedence = map[GuardStage]int{
	StageAuthenticate: 0,
	StagePlan:         1,
}

// Descriptor is one protected route as declared in configuration.
type Descriptor struct {
	// Path is the route pattern, e.g. "GET /orders".
	Path string

	// Access is the capability the caller must hold. Required on any
	// guarded route: a plan requirement alone is not sufficient.
	Access domainauth.Capability

	// RequiredPlan, when set, additionally requires the caller's plan
	// to satisfy it. PRO is satisfied by PRO and ENTERPRISE.
	RequiredPlan domainauth.Plan

	// Guards lists the stages applied to this route. Declaration order
	// is irrelevant; evaluation follows stage precedence.
	Guards []GuardStage
}

// OrderedGuards returns the route's guard stages in evaluation order.
func (d Descriptor) OrderedGuards() []GuardStage {
	out := append([]GuardStage(nil), d.Guards...)
	sort.SliceStable(out, func(i, j int) bool {
		return stagePrecedence[out[i]] < stagePrecedence[out[j]]
	})
	return out
}

func (d Descriptor) hasGuard(s GuardStage) bool {
	for _, g := range d.Guards {
		if g == s {
			return true
		}
	}
	return false
}

// Validate checks a single descriptor against the closed capability set
// and the guard-wiring invariants.
func (d Descriptor) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("route with empty path")
	}
	for _, g := range d.Guards {
		if _, ok := stagePrecedence[g]; !ok {
			return fmt.Errorf("route %s: unknown guard stage %q", d.Path, g)
		}
	}
	if len(d.Guards) == 0 {
		return nil // public route
	}

	// Guarded routes must name an explicit capability.
	if d.Access == "" {
		return fmt.Errorf("route %s: guarded route must declare an access capability", d.Path)
	}
	if _, err := domainauth.ParseCapability(string(d.Access)); err != nil {
		return fmt.Errorf("route %s: %w", d.Path, err)
	}

	// The access capability is only enforced by the authenticate stage.
	// A guarded route without that stage would skip the check entirely
	// and could answer an anonymous caller with a plan verdict.
	if !d.hasGuard(StageAuthenticate) {
		return fmt.Errorf("route %s: guarded route must include the authenticate stage", d.Path)
	}

	// A plan requirement without the plan guard stage would be
	// silently skipped; reject the configuration instead.
	if d.RequiredPlan != "" {
		if !d.RequiredPlan.Valid() {
			return fmt.Errorf("route %s: unknown plan %q", d.Path, d.RequiredPlan)
		}
		if !d.hasGuard(StagePlan) {
			return fmt.Errorf("route %s: requiredPlan set without the plan guard stage", d.Path)
		}
	}
	if d.hasGuard(StagePlan) && d.RequiredPlan == "" {
		return fmt.Errorf("route %s: plan guard stage without requiredPlan", d.Path)
	}
	return nil
}

// ValidateAll validates a route table and rejects duplicate paths.
func ValidateAll(routes []Descriptor) error {
	seen := make(map[string]struct{}, len(routes))
	for _, d := range routes {
		if err := d.Validate(); err != nil {
			return err
		}
		if _, dup := seen[d.Path]; dup {
			return fmt.Errorf("route %s declared twice", d.Path)
		}
		seen[d.Path] = struct{}{}
	}
	return nil
}

// PlanSatisfies reports whether have meets the need tier.
// ENTERPRISE satisfies every requirement; PRO satisfies PRO.
func PlanSatisfies(have, need domainauth.Plan) bool {
	switch need {
	case "":
		return true
	case domainauth.PlanFree:
		return have != ""
	case domainauth.PlanPro:
		return have == domainauth.PlanPro || have == domainauth.PlanEnterprise
	case domainauth.PlanEnterprise:
		return have == domainauth.PlanEnterprise
	}
	return false
}
