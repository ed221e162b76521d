package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

const sessionKey = "portal_session"

// SessionResolver loads a live session by id.
type SessionResolver interface {
	Lookup(ctx context.Context, id string) (*domain.Session, error)
}

// AuthMiddleware resolves the portal session of each request.
type AuthMiddleware struct {
	sessions   SessionResolver
	cookieName string
}

// NewAuthMiddleware constructs middleware reading the session id from
// cookieName or, failing that, a bearer Authorization header.
func NewAuthMiddleware(sessions SessionResolver, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	id := m.SessionID(c)
	if id == "" {
		return apperrors.NewAuthExpired("please log in")
	}
	sess, err := m.sessions.Lookup(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}

// SessionID extracts the session id carried by the request, if any.
func (m *AuthMiddleware) SessionID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Cookies(m.cookieName)); id != "" {
		return id
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.Session)
	return sess, ok
}
