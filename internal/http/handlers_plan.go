package httpx

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/fooddash/console-api/internal/domain/auth"
	apperrors "github.com/fooddash/console-api/internal/errors"
	"github.com/fooddash/console-api/internal/ports"
)

// PlanHandlers serves plan metadata and plan-gated utilities.
type PlanHandlers struct {
	Cache ports.StateCache

	// RealtimeTokenTTL bounds issued realtime channel tokens. Defaults
	// to 1m; the dashboard reconnects well before expiry.
	RealtimeTokenTTL time.Duration
}

// Current describes the caller's effective plan: features and limits.
// GET /api/plan.
func (h *PlanHandlers) Current(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil || session.Identity == nil {
		RenderError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	plan := session.Identity.Plan
	if session.Subscription != nil && session.Subscription.Plan != "" {
		plan = session.Subscription.Plan
	}

	limits := domainauth.PlanLimits(plan)
	WriteJSON(w, http.StatusOK, map[string]any{
		"plan":     plan,
		"features": domainauth.Features(plan),
		"limits": map[string]any{
			"max_active_orders": limits.MaxActiveOrders,
			"realtime":          limits.Realtime,
		},
	})
}

// RealtimeToken issues a short-lived token for the realtime order
// channel. The route is plan-guarded; this handler only mints and
// stashes the token.
// GET /api/realtime/token.
func (h *PlanHandlers) RealtimeToken(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil || session.Identity == nil {
		RenderError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	ttl := h.RealtimeTokenTTL
	if ttl == 0 {
		ttl = time.Minute
	}

	token := uuid.NewString()
	if h.Cache != nil {
		if err := h.Cache.Seed(r.Context(), "realtime:"+token, session.Identity.ID, ttl); err != nil {
			RenderError(w, apperrors.Wrap(err, apperrors.ErrCodeInternal, "issue realtime token"))
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": time.Now().Add(ttl).UTC(),
	})
}
