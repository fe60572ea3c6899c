// Package auth defines the identity contract for the HTTP surface.
// Token verification itself is an external collaborator; the service
// depends only on the Authorizer interface.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrUnauthorized = errors.New("unauthorized")

// Identity is the authenticated caller.
type Identity struct {
	UserID string
}

// Authorizer resolves an API key to an identity.
type Authorizer interface {
	Authorize(ctx context.Context, apiKey string) (*Identity, error)
}

// FromRequest extracts the bearer token from an Authorization header.
func FromRequest(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrUnauthorized
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrUnauthorized
	}
	return parts[1], nil
}
