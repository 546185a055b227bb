package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"microsocial/app/auth"
	"microsocial/app/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth enforces bearer token authentication for protected routes
type Auth struct {
	tokens  *auth.TokenManager
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewAuth creates the authentication middleware
func NewAuth(tokens *auth.TokenManager, logger *slog.Logger, m *metrics.Metrics) *Auth {
	return &Auth{tokens: tokens, logger: logger, metrics: m}
}

// RequireAuth ensures the request carries a valid bearer token.
// If not authenticated, returns 401
// If authenticated, injects the user id into the context
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			a.reject(w, r, "missing_header", nil, "Not authorized, no token")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			a.reject(w, r, "bad_scheme", nil, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		userID, _, err := a.tokens.Verify(token)
		if err != nil {
			a.reject(w, r, "invalid_token", err, "Not authorized, token failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (a *Auth) reject(w http.ResponseWriter, r *http.Request, reason string, err error, message string) {
	a.metrics.AuthFailures.WithLabelValues(reason).Inc()
	attrs := []any{
		"reason", reason,
		"ip", r.RemoteAddr,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", GetRequestID(r),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	a.logger.WarnContext(r.Context(), "auth failure", attrs...)
	writeError(w, http.StatusUnauthorized, message)
}

// WithUserID stores the authenticated user id in ctx
func WithUserID(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// GetUserID extracts the authenticated user id from the request context.
// ok is false on routes without RequireAuth.
func GetUserID(r *http.Request) (primitive.ObjectID, bool) {
	id, ok := r.Context().Value(UserIDKey).(primitive.ObjectID)
	return id, ok
}
