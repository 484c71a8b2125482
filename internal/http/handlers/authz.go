package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireRole guards a dashboard area. Anonymous visitors are sent to the
// login page; signed-in users without the role get a 403 and a security log
// entry named access.denied.<area>.
func RequireRole(area string, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Redirect("/login")
		}
		if !u.Is(roles...) {
			applog.Security(c, "access.denied."+area, map[string]any{"user_id": u.ID, "role": string(u.Role)})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		return c.Next()
	}
}
