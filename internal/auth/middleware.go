package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-report-service/internal/domain"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

const sessionKey = "auth_session"

// SessionGuard validates bearer tokens and enforces role requirements.
type SessionGuard struct {
	codec *TokenCodec
}

// NewSessionGuard constructs the guard.
func NewSessionGuard(codec *TokenCodec) *SessionGuard {
	return &SessionGuard{codec: codec}
}

// Authenticate enforces a valid bearer token on protected routes. Every
// failure mode (missing header, wrong scheme, malformed, tampered, expired)
// maps to the same unauthenticated response so callers cannot probe which
// check rejected them.
func (g *SessionGuard) Authenticate(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("authentication required")
	}

	session, err := g.codec.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// RequireAdmin runs after Authenticate and rejects non-admin sessions.
func (g *SessionGuard) RequireAdmin(c *fiber.Ctx) error {
	session, ok := SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if session.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin access required")
	}
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}
