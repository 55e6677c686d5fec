package handlers

import (
	"strings"
	"time"

	"ecomapp/internal/domain"
	"ecomapp/internal/log"
	"ecomapp/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
}

type registerRequest struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// POST /api/users/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "auth.register", domain.Invalid("body", "request body must be valid JSON"))
	}
	u, err := h.Auth.Register(c.UserContext(), services.Registration{
		FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Password: req.Password,
	})
	if err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			log.Security(c, "auth.register.duplicate", map[string]any{"email": req.Email})
		}
		return fail(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"new_user_id": u.ID})
	return c.JSON(fiber.Map{"details": "Please check your email to activate your account."})
}

// GET /api/users/activate/:uid/:token
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	if err := h.Auth.Activate(c.UserContext(), c.Params("uid"), c.Params("token")); err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			log.Error(c, "auth.activate", err, nil)
		} else {
			log.Security(c, "auth.activate.fail", nil)
		}
		return c.Status(fiber.StatusBadRequest).Type("html", "utf-8").Render("activate_fail", fiber.Map{})
	}
	log.Audit(c, "auth.activate", nil)
	return render(c, "activate_success", fiber.Map{"LoginURL": "/login"})
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	_ = c.BodyParser(&req)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" || req.Password == "" {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "missing_fields"})
		return fail(c, "auth.login", domain.Unauthorized("No active account found with the given credentials"))
	}

	u, sid, err := h.Auth.Login(c.UserContext(), email, req.Password)
	if err != nil {
		if domain.IsKind(err, domain.KindUnauthorized) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
		}
		return fail(c, "auth.login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
	})
	c.Locals(log.UserIDKey, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})

	v := toUser(u)
	v.Token = sid
	return c.JSON(v)
}

// POST /api/users/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), sessionToken(c)); err != nil {
		return fail(c, "auth.logout", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/users/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	return c.JSON(toUser(currentUser(c)))
}
