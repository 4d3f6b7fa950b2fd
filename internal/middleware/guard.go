package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"tool-market/internal/apperrors"
	"tool-market/internal/metrics"
	"tool-market/internal/models"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (models.Role, error)
}

// AccessGuard gates routes on a bearer credential (Authenticate) and on the
// admin role (RequireAdmin). A failing stage writes the response and halts.
type AccessGuard struct {
	verifier TokenVerifier
	roles    RoleLookup
	logger   zerolog.Logger

	// invalidCode answers a present but unverifiable credential.
	invalidCode apperrors.Code
}

// NewAccessGuard builds the guard. With strict unset an invalid or expired
// credential is answered with 403 instead of 401.
func NewAccessGuard(verifier TokenVerifier, roles RoleLookup, strict bool, logger zerolog.Logger) *AccessGuard {
	invalid := apperrors.CodeUnauthenticated
	if !strict {
		invalid = apperrors.CodeForbidden
	}
	return &AccessGuard{
		verifier:    verifier,
		roles:       roles,
		logger:      logger,
		invalidCode: invalid,
	}
}

// Authenticate is AuthGate: it verifies the bearer token and stores its email
// as the request identity.
func (g *AccessGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			g.reject(w, r, "auth", apperrors.CodeUnauthenticated, "Authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			g.reject(w, r, "auth", g.invalidCode, "Invalid authorization header format")
			return
		}

		email, err := g.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			g.logger.Warn().Err(err).Str("request_id", RequestID(r.Context())).Msg("Invalid token")
			g.reject(w, r, "auth", g.invalidCode, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), email)))
	})
}

// RequireAdmin is AdminGate. It must run after Authenticate; use Admin to
// mount both in order.
func (g *AccessGuard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := IdentityFromContext(r.Context())
		if !ok {
			g.reject(w, r, "admin", apperrors.CodeUnauthenticated, "Identity not established")
			return
		}

		role, err := g.roles.RoleOf(r.Context(), email)
		if err != nil {
			g.logger.Error().Err(err).Str("email", email).Msg("Error resolving role")
			g.reject(w, r, "admin", apperrors.CodeInternal, "An internal error occurred")
			return
		}

		if role != models.RoleAdmin {
			g.logger.Info().Str("email", email).Str("role", role.String()).Msg("Admin access denied")
			g.reject(w, r, "admin", apperrors.CodeForbidden, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Admin mounts AuthGate then AdminGate in front of next.
func (g *AccessGuard) Admin(next http.Handler) http.Handler {
	return g.Authenticate(g.RequireAdmin(next))
}

func (g *AccessGuard) reject(w http.ResponseWriter, r *http.Request, guard string, code apperrors.Code, message string) {
	metrics.GuardRejections.WithLabelValues(guard, string(code)).Inc()
	g.logger.Debug().
		Str("request_id", RequestID(r.Context())).
		Str("guard", guard).
		Str("code", string(code)).
		Str("path", r.URL.Path).
		Msg("Request rejected by guard")
	respondWithError(w, code, message)
}
