package http

import (
	"context"
	"net/http"
	"strings"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/logger"
	"bliss-balance-backend/internal/security"
	"bliss-balance-backend/internal/service"
)

type contextKey string

const claimsContextKey contextKey = "user_claims"

// claimsFrom returns the authenticated caller's claims, if any.
func claimsFrom(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims, ok
}

// Authenticate validates the bearer token and stores its claims on the
// request context. Refresh tokens are rejected here; they are only good
// for the refresh endpoint.
func Authenticate(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, err)
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, security.ErrWrongTokenType)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the caller's stored role. The role is
// re-read from the account directory on every request, so a revoked or
// deactivated account is locked out even while its token is still valid.
func RequireRole(directory service.AccountDirectory, role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
				return
			}
			if _, err := directory.RequireRole(r.Context(), claims.AccountID, role); err != nil {
				logger.Warn("role check failed",
					"account_id", claims.AccountID,
					"required_role", role,
					"error", err)
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging logs each request after it completes.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
