package handlers

import (
	"context"
	"strings"

	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookie = "sid"
	userKey       = "user"
)

// SessionResolver turns a session token into its user.
type SessionResolver interface {
	CurrentUser(ctx context.Context, sid string) (*domain.User, error)
}

// sessionToken reads "Authorization: Bearer <token>", falling back to the sid cookie.
func sessionToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return c.Cookies(sessionCookie)
}

// Authenticate attaches the caller to the request when a valid session is
// presented. It never rejects.
func Authenticate(auth SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := sessionToken(c); tok != "" {
			if u, err := auth.CurrentUser(c.UserContext(), tok); err == nil && u != nil {
				c.Locals(userKey, u)
				c.Locals(applog.UserIDKey, u.ID)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(userKey).(*domain.User)
	return u
}

// RequireUser rejects requests without an authenticated caller.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Authentication credentials were not provided."})
		}
		return c.Next()
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Authentication credentials were not provided."})
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"role": u.Role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "You do not have permission to perform this action."})
		}
		return c.Next()
	}
}
