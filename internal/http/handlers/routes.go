package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
)

// Mount registers the session middleware and every storefront route.
// loginGuards run in front of POST /login (rate limiting).
func (d *Deps) Mount(app fiber.Router, loginGuards ...fiber.Handler) {
	app.Use(Session(d.Auth, d.Carts))

	app.Get("/", d.CatalogHandler.Home)
	app.Get("/product", func(c *fiber.Ctx) error {
		return notFound(c, "This item is no longer available")
	})
	app.Get("/product/:id", d.CatalogHandler.Detail)

	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/clear", d.CartHandler.Clear)
	app.Post("/cart/:id/qty", d.CartHandler.SetQty)
	app.Post("/cart/:id/addons", d.CartHandler.SetAddOns)
	app.Post("/cart/:id/brief", d.CartHandler.SetBrief)
	app.Post("/cart/:id/remove", d.CartHandler.Remove)

	api := app.Group("/api/v1")
	api.Get("/cart", d.CartHandler.API)

	app.Get("/checkout", RequireUser(), d.OrderHandler.Review)
	app.Post("/orders", RequireUser(), d.OrderHandler.Place)
	app.Get("/order/:id", RequireUser(), d.OrderHandler.View)
	app.Get("/orders", RequireUser(), d.OrderHandler.History)

	app.Get("/dashboard", RequireUser(), d.DashboardHandler.Buyer)
	app.Get("/seller", RequireRole("seller", domain.RoleSeller, domain.RoleAdmin), d.DashboardHandler.Seller)
	app.Get("/admin", RequireRole("admin", domain.RoleAdmin), d.DashboardHandler.Admin)

	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", append(loginGuards, d.AuthHandler.Login)...)
	app.Post("/logout", d.AuthHandler.Logout)
}
