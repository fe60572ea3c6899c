package api

import (
	"context"
	"net/http"

	respond "github.com/repofit/repofit-backend/internal/api/respond"
	"github.com/repofit/repofit-backend/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireAuth resolves the bearer API key to an identity and stores it
// on the request context. Requests without a valid key get 401.
func RequireAuth(authorizer auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := auth.FromRequest(r)
			if err != nil {
				respond.WriteUnauthorized(w, "missing or malformed Authorization header")
				return
			}
			id, err := authorizer.Authorize(r.Context(), key)
			if err != nil {
				respond.WriteUnauthorized(w, "invalid API key")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom returns the authenticated identity set by RequireAuth.
func identityFrom(r *http.Request) (*auth.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*auth.Identity)
	return id, ok
}
