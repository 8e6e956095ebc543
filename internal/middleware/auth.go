package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kavya-apps/userhub/internal/auth"
)

type contextKey string

const identityKey contextKey = "userhub_identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Role   string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireAuth validates the bearer token and injects the caller's
// identity into the request context.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, `{"error":"unauthorized access"}`, http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, `{"error":"unauthorized access"}`, http.StatusUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route to callers whose token carries the admin role.
// Must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"unauthorized access"}`, http.StatusUnauthorized)
			return
		}
		if id.Role != "admin" {
			http.Error(w, `{"error":"unauthorized access"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
