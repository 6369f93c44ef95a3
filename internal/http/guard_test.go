package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	"github.com/fooddash/console-api/internal/domain/route"
	"github.com/fooddash/console-api/internal/testutil"
)

func guardedProbe(desc route.Descriptor) (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return Guard(desc, nil)(next), &reached
}

func apiRequest(path string, session *domainauth.Session) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Accept", "application/json")
	if session != nil {
		r = r.WithContext(SetSessionInContext(r.Context(), session))
	}
	return r
}

func browserRequest(path string, session *domainauth.Session) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	if session != nil {
		r = r.WithContext(SetSessionInContext(r.Context(), session))
	}
	return r
}

func authOnlyRoute() route.Descriptor {
	return route.Descriptor{
		Path:   "GET /api/devices",
		Access: domainauth.CapIsAuthenticated,
		Guards: []route.GuardStage{route.StageAuthenticate},
	}
}

func planGatedRoute() route.Descriptor {
	return route.Descriptor{
		Path:         "GET /api/realtime/token",
		Access:       domainauth.CapIsAuthenticated,
		RequiredPlan: domainauth.PlanPro,
		// Declared backwards on purpose; evaluation order is fixed.
		Guards: []route.GuardStage{route.StagePlan, route.StageAuthenticate},
	}
}

func TestGuardUnauthenticatedAPIRequest(t *testing.T) {
	handler, reached := guardedProbe(authOnlyRoute())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/devices", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication_required", body["error"])
}

func TestGuardUnauthenticatedBrowserRedirects(t *testing.T) {
	desc := authOnlyRoute()
	desc.Path = "GET /settings"
	handler, reached := guardedProbe(desc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, browserRequest("/settings?tab=billing", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, *reached)

	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, loginPath+"?redirect_uri=")
	assert.Contains(t, loc, "%2Fsettings")
}

func TestGuardAuthenticatedPasses(t *testing.T) {
	handler, reached := guardedProbe(authOnlyRoute())
	sess := testutil.NewSession().Build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/devices", &sess))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestGuardAuthenticationAlwaysPrecedesPlan(t *testing.T) {
	// No session on a plan-gated route: the verdict must be the auth
	// failure, never the plan failure, regardless of declaration order.
	handler, reached := guardedProbe(planGatedRoute())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/realtime/token", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestGuardInsufficientPlanAPIRequest(t *testing.T) {
	handler, reached := guardedProbe(planGatedRoute())
	sess := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithPlan(domainauth.PlanFree).Build()).
		Build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/realtime/token", &sess))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.False(t, *reached)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "plan_upgrade_required", body["error"])
}

func TestGuardInsufficientPlanBrowserRedirectsToUpgrade(t *testing.T) {
	desc := planGatedRoute()
	desc.Path = "GET /reports/live"
	handler, _ := guardedProbe(desc)
	sess := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithPlan(domainauth.PlanFree).Build()).
		Build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, browserRequest("/reports/live", &sess))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, upgradePath+"?plan=PRO", rec.Header().Get("Location"))
}

func TestGuardPlanSatisfied(t *testing.T) {
	for _, plan := range []domainauth.Plan{domainauth.PlanPro, domainauth.PlanEnterprise} {
		t.Run(string(plan), func(t *testing.T) {
			handler, reached := guardedProbe(planGatedRoute())
			sess := testutil.NewSession().
				WithIdentity(testutil.NewIdentity().WithPlan(plan).Build()).
				Build()

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, apiRequest("/api/realtime/token", &sess))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, *reached)
		})
	}
}

func TestGuardSubscriptionPlanOverridesIdentity(t *testing.T) {
	handler, reached := guardedProbe(planGatedRoute())
	// Stale FREE on the identity, upgraded subscription snapshot.
	sess := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithPlan(domainauth.PlanFree).Build()).
		WithSubscription(domainauth.Subscription{Plan: domainauth.PlanEnterprise, Status: domainauth.SubscriptionActive}).
		Build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/realtime/token", &sess))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestGuardForbiddenCapability(t *testing.T) {
	desc := route.Descriptor{
		Path:   "GET /api/billing",
		Access: domainauth.CapIsOwner,
		Guards: []route.GuardStage{route.StageAuthenticate},
	}
	handler, reached := guardedProbe(desc)
	sess := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithRole(domainauth.RoleManager).Build()).
		Build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/billing", &sess))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *reached)
}

func TestGuardRecomputesPerRequest(t *testing.T) {
	handler, _ := guardedProbe(planGatedRoute())

	proSession := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithPlan(domainauth.PlanPro).Build()).
		Build()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/realtime/token", &proSession))
	require.Equal(t, http.StatusOK, rec.Code)

	// A downgraded session on the next request is denied; nothing was
	// latched from the earlier pass.
	freeSession := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithPlan(domainauth.PlanFree).Build()).
		Build()
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/realtime/token", &freeSession))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestGuardExposesAccessToHandlers(t *testing.T) {
	var access domainauth.CapabilityMap
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access = GetAccessFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Guard(authOnlyRoute(), nil)(next)

	sess := testutil.NewSession().
		WithIdentity(testutil.NewIdentity().WithRole(domainauth.RoleOwner).WithPlan(domainauth.PlanPro).Build()).
		Build()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, apiRequest("/api/devices", &sess))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, access.Has(domainauth.CapIsAuthenticated))
	assert.True(t, access.Has(domainauth.CapIsOwner))
	assert.True(t, access.Has(domainauth.CapHasPro))
	assert.False(t, access.Has(domainauth.CapHasEnterprise))
}
