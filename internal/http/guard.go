package httpx

import (
	"errors"
	"net/http"
	"net/url"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/domain/route"
	"github.com/fooddash/console-api/internal/observability/metrics"
	"github.com/fooddash/console-api/internal/observability/statsd"
)

// Guard returns the middleware enforcing a route descriptor. Stages run
// in fixed precedence: authentication is always settled before any plan
// comparison, so an expired session can never surface as a plan error.
// The outcome is recomputed on every request; nothing is latched from a
// previous pass.
//
// Browser requests get redirects (login or upgrade); API requests get
// the JSON error envelope.
func Guard(desc route.Descriptor, sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := GetUserSessionFromContext(r.Context())

			access := domainauth.CapabilityMap{}
			if session != nil {
				access = domainauth.ComputeAccess(session.Identity, session.Subscription)
			}

			for _, stage := range desc.OrderedGuards() {
				switch stage {
				case route.StageAuthenticate:
					if !access.Has(domainauth.CapIsAuthenticated) {
						metrics.EmitGuardDenial(sink, "authenticate", "unauthenticated")
						denyUnauthenticated(w, r)
						return
					}
					if desc.Access != domainauth.CapIsAuthenticated && !access.Has(desc.Access) {
						metrics.EmitGuardDenial(sink, "authenticate", "forbidden")
						denyForbidden(w, r)
						return
					}
				case route.StagePlan:
					if !planSatisfied(session, desc.RequiredPlan) {
						metrics.EmitGuardDenial(sink, "plan", "insufficient_plan")
						denyInsufficientPlan(w, r, desc.RequiredPlan)
						return
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(SetAccessInContext(r.Context(), access)))
		})
	}
}

// planSatisfied compares the caller's effective plan against the
// route's requirement. The subscription snapshot wins over the identity
// claim when both are present.
func planSatisfied(session *domainauth.Session, need domainauth.Plan) bool {
	if session == nil || session.Identity == nil {
		return false
	}
	have := session.Identity.Plan
	if session.Subscription != nil && session.Subscription.Plan != "" {
		have = session.Subscription.Plan
	}
	return route.PlanSatisfies(have, need)
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		redirectToLogin(w, r)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

func denyForbidden(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		http.Error(w, "Access Denied: You don't have permission to access this resource", http.StatusForbidden)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusForbidden,
		ErrCode: "insufficient_permissions",
		Err:     errors.New("insufficient permissions"),
	})
}

func denyInsufficientPlan(w http.ResponseWriter, r *http.Request, need domainauth.Plan) {
	if IsBrowserRequest(r) {
		// Replace-style redirect: the gated page never enters history.
		dest := upgradePath + "?plan=" + url.QueryEscape(string(need))
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusPaymentRequired,
		ErrCode: "plan_upgrade_required",
		Err:     errors.New("your current plan does not include this feature"),
	})
}
