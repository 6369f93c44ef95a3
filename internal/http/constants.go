package httpx

// Cookie names used by the auth handlers and middleware.
const (
	sessionCookieName    = "session_id"
	rememberedCookieName = "remembered_email"
	oauthStateCookie     = "oauth_state"
	oauthNonceCookie     = "oauth_nonce"
	postLoginCookie      = "post_login_redirect"
)

// Dashboard destinations for browser-facing redirects. The console
// serves the API; these paths live on the dashboard it fronts.
const (
	loginPath   = "/login"
	upgradePath = "/upgrade"
)

// rememberedEmailMaxAge keeps the login prefill for 30 days. Only the
// email is ever remembered; credentials are never persisted.
const rememberedEmailMaxAge = 30 * 24 * 60 * 60
