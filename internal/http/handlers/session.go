package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"storefront/internal/cart"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

// ensureSID returns the browser session id, issuing one on first visit.
// The cookie survives sign-out: it names the browser, not the user.
func ensureSID(c *fiber.Ctx) string {
	sid := utils.CopyString(c.Cookies("sid"))
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
			MaxAge:   60 * 60 * 24 * 365,
		})
	}
	return sid
}

// Session resolves the signed-in user and binds the browser's cart to it.
// Every later handler reads both from Locals.
func Session(auth *services.AuthService, carts *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		c.Locals("sid", sid)

		var userID string
		u, err := auth.CurrentUser(sid)
		switch {
		case errors.Is(err, services.ErrSessionExpired):
			applog.Security(c, "auth.session.expired", map[string]any{"sid": sid})
		case err != nil:
			applog.Error(c, "auth.session.load", err, nil)
		case u != nil:
			c.Locals("user", u)
			userID = u.ID
		}
		c.Locals("cart", carts.Session(sid, userID))
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	return sid
}

func cartOf(c *fiber.Ctx) *cart.Store {
	s, _ := c.Locals("cart").(*cart.Store)
	return s
}

// mutableCart returns the request's cart only while it is still bound to
// the identity this request resolved. A sign-in or sign-out in another tab
// can rebind the store between Session and the handler; such a request
// must not write to whichever partition is bound now.
func mutableCart(c *fiber.Ctx) (*cart.Store, bool) {
	s := cartOf(c)
	if s == nil {
		return nil, false
	}
	var uid string
	if u := currentUser(c); u != nil {
		uid = u.ID
	}
	if s.UserID() != uid {
		applog.Security(c, "cart.identity.stale", map[string]any{"sid": sessionID(c)})
		return nil, false
	}
	return s, true
}

func staleSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).SendString("your session changed, reload the page")
}
