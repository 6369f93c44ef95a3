package httpx

import (
	"net/http"

	apperrors "github.com/fooddash/console-api/internal/errors"
)

// statusForCode maps application error codes onto HTTP statuses. Plan
// violations surface as 402 to mirror the upstream billing contract.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodePlanRequired:
		return http.StatusPaymentRequired
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope returned to the dashboard.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RenderError writes err as the console's JSON error envelope, mapping
// the application error code to an HTTP status. Unknown errors become
// a generic 500 without leaking internals.
func RenderError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := statusForCode(code)

	message := "An error occurred. Please try again."
	if status < http.StatusInternalServerError {
		message = err.Error()
	}

	WriteJSON(w, status, errorBody{
		Error:   string(code),
		Message: message,
		Field:   apperrors.GetField(err),
	})
}
