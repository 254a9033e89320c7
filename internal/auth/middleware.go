package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const (
	identityKey = "auth_identity"

	// HeaderAuthToken is the custom transport field carrying a raw token.
	HeaderAuthToken = "x-auth-token"

	bearerPrefix = "Bearer "
)

// Middleware resolves caller identity from request headers.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware around the token manager.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth is the strict gate: the request fails unless the x-auth-token
// header carries a verifiable token. Missing and invalid/expired tokens both
// surface as UNAUTHORIZED; the cause is not distinguished to the caller.
func (m *Middleware) RequireAuth(c *fiber.Ctx) error {
	token := c.Get(HeaderAuthToken)
	if token == "" {
		return apperrors.NewUnauthorized("no token")
	}

	identity, err := m.tokens.Verify(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// OptionalAuth never rejects the request. It accepts a token from
// x-auth-token or from Authorization (stripping a "Bearer " prefix), attaches
// the identity when verification succeeds, and proceeds anonymously otherwise.
func (m *Middleware) OptionalAuth(c *fiber.Ctx) error {
	token := c.Get(HeaderAuthToken)
	if token == "" {
		token = c.Get(fiber.HeaderAuthorization)
	}
	token = strings.TrimPrefix(token, bearerPrefix)

	if token != "" {
		if identity, err := m.tokens.Verify(token); err == nil {
			c.Locals(identityKey, identity)
		}
	}
	return c.Next()
}

// IdentityFromContext retrieves the verified caller, if any.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
