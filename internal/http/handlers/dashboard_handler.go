package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

type DashboardHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
}

// GET /dashboard
func (h *DashboardHandler) Buyer(c *fiber.Ctx) error {
	orders, err := h.Checkout.History(c.UserContext(), currentUser(c))
	if err != nil {
		applog.Error(c, "dashboard.orders.fail", err, nil)
	}
	return render(c, "dashboard", fiber.Map{
		"Orders": orders,
		"Totals": cartOf(c).Totals(),
	})
}

// GET /seller
func (h *DashboardHandler) Seller(c *fiber.Ctx) error {
	ps, err := h.Catalog.SellerProducts(c.UserContext(), currentUser(c).Token)
	if err != nil {
		applog.Error(c, "seller.products.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "Could not load your listings"})
	}
	return render(c, "seller_dashboard", fiber.Map{"Products": ps})
}

// GET /admin
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	orders, err := h.Checkout.AllOrders(c.UserContext(), currentUser(c))
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_dashboard", fiber.Map{"Orders": orders})
}
