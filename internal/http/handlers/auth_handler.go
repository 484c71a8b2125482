package handlers

import (
	"errors"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return h.loginFailed(c)
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return h.loginFailed(c)
	}

	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return h.loginFailed(c)
	}
	if err != nil {
		log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		c.Status(fiber.StatusBadGateway)
		return render(c, "login", fiber.Map{"Err": "Sign-in is unavailable right now. Please try again."})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "user_id": u.ID})
	switch u.Role {
	case domain.RoleAdmin:
		return c.Redirect("/admin")
	case domain.RoleSeller:
		return c.Redirect("/seller")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx) error {
	c.Status(fiber.StatusUnauthorized)
	return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
}

// Logout drops the identity but keeps the sid cookie, so the browser lands
// back on its own anonymous cart.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
