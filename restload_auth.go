package restload

import (
	"context"

	"github.com/Benjamin-Hogan/restload/internal/auth"
)

// Public constants for the built-in auth provider types usable in an
// AuthSpec. Custom providers can use their own type strings.
const (
	AuthTypeBasic                   = "basic"
	AuthTypeToken                   = "token"
	AuthTypeJWT                     = "jwt"
	AuthTypeOAuth2ClientCredentials = "oauth2_client_credentials"
	AuthTypeOAuth2Password          = "oauth2_password"
)

// AuthSpec selects an auth provider and carries its configuration.
type AuthSpec = auth.Spec

// AuthMethod acquires one credential header.
type AuthMethod = auth.Method

// AuthFactory builds an AuthMethod from a loosely-typed config map.
type AuthFactory = auth.Factory

// RegisterAuthProvider installs a custom auth provider for use in
// APIConfig auth specs.
func RegisterAuthProvider(typ string, f AuthFactory) { auth.Register(typ, f) }

// AcquireAuth resolves a spec and acquires its credential header.
func AcquireAuth(ctx context.Context, spec AuthSpec) (header, value string, err error) {
	return auth.Acquire(ctx, spec)
}
