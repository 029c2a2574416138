package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ms-restaurant/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "user_role"
)

// Middleware verifies the bearer token against the external OIDC issuer and
// stores the subject and role claims in the request context. Token issuance
// happens entirely outside this service. Without an issuer configured it
// falls back to unverified claim parsing, which is only acceptable for local
// development.
func Middleware(issuer string) func(http.Handler) http.Handler {
	if issuer == "" {
		return devMiddleware()
	}

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OIDC provider: %v", err))
	}

	// SkipClientIDCheck → no client ID required
	verifier := provider.Verifier(&oidc.Config{
		SkipClientIDCheck: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}
			rawToken := parts[1]

			idToken, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			var claims struct {
				Sub  string `json:"sub"`
				Role string `json:"role"`
			}
			if err := idToken.Claims(&claims); err != nil {
				http.Error(w, "failed to parse claims", http.StatusUnauthorized)
				return
			}
			if claims.Sub == "" {
				http.Error(w, "token has no subject", http.StatusUnauthorized)
				return
			}

			role := models.Role(claims.Role)
			switch role {
			case models.RoleAdmin, models.RoleStaff, models.RoleUser:
			default:
				role = models.RoleUser
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Sub)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// devMiddleware reads the subject and role claims without checking the
// token signature.
func devMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			actor, err := ActorFromJWT(rawToken)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// Actor rebuilds the authenticated caller from the request context.
func Actor(ctx context.Context) models.Actor {
	a := models.Actor{Role: models.RoleUser}
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		a.ID = uid
	}
	if role, ok := ctx.Value(roleKey).(models.Role); ok {
		a.Role = role
	}
	return a
}

// WithActor injects an actor directly, bypassing token verification. Used by
// handler tests.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	ctx = context.WithValue(ctx, userIDKey, actor.ID)
	return context.WithValue(ctx, roleKey, actor.Role)
}
