package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/policy"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util/errorutil"
)

// RequireRole ensures the session user has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewAuthExpired("please log in")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[sess.Role()]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireRoute ensures the session user may open the requested page.
func RequireRoute() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewAuthExpired("please log in")
		}
		if !policy.AllowedRoute(sess.Role(), c.Path()) {
			return apperrors.NewForbidden("you do not have access to this page")
		}
		return c.Next()
	}
}

// RequireSession ensures a session was resolved.
func RequireSession() fiber.Handler {
	return RequireRole()
}
