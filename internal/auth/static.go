package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// StaticAuthorizer maps fixed API keys to user IDs. Intended for local
// development and tests; production deployments put an auth proxy in
// front of the service instead.
type StaticAuthorizer struct {
	keys map[string]string
}

// ParseStatic builds a StaticAuthorizer from a "key:user,key:user"
// specification, the format used by the APIKeys config value.
func ParseStatic(spec string) (*StaticAuthorizer, error) {
	keys := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, user, ok := strings.Cut(pair, ":")
		if !ok || key == "" || user == "" {
			return nil, errors.Errorf("auth: malformed api key entry %q", pair)
		}
		keys[key] = user
	}
	if len(keys) == 0 {
		return nil, errors.New("auth: no api keys configured")
	}
	return &StaticAuthorizer{keys: keys}, nil
}

func (a *StaticAuthorizer) Authorize(_ context.Context, apiKey string) (*Identity, error) {
	user, ok := a.keys[apiKey]
	if !ok {
		return nil, ErrUnauthorized
	}
	return &Identity{UserID: user}, nil
}
