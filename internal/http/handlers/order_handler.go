package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront/internal/backend"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
}

func (h *OrderHandler) checkoutPage(c *fiber.Ctx, idem, errMsg string) error {
	store := cartOf(c)
	return render(c, "checkout", fiber.Map{
		"Lines":   lineViews(store.Lines()),
		"Preview": h.Checkout.Preview(store),
		"Idem":    idem,
		"Err":     errMsg,
	})
}

// GET /checkout
func (h *OrderHandler) Review(c *fiber.Ctx) error {
	store := cartOf(c)
	if len(store.Lines()) == 0 {
		return c.Redirect("/cart")
	}
	msg := ""
	if err := h.Checkout.Validate(store); err != nil {
		msg = err.Error()
	}
	return h.checkoutPage(c, uuid.NewString(), msg)
}

// POST /orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)
	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	idem, ok := validate.ID(c.FormValue("idem"))
	if !ok {
		idem = uuid.NewString()
	}

	order, err := h.Checkout.Place(c.UserContext(), store, u, idem)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/cart")
	case errors.Is(err, services.ErrBriefRequired):
		applog.Security(c, "validation.fail", map[string]any{"field": "brief"})
		c.Status(fiber.StatusBadRequest)
		return h.checkoutPage(c, idem, err.Error())
	case err != nil:
		applog.Error(c, "order.place.fail", err, map[string]any{"user_id": u.ID})
		c.Status(fiber.StatusBadGateway)
		return h.checkoutPage(c, idem, "Could not place order. Please try again.")
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id":    order.ID,
		"grand_total": order.GrandTotal,
		"eta_days":    order.ETADays,
	})
	return c.Redirect("/order/" + order.ID)
}

// GET /order/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	o, err := h.Checkout.Order(c.UserContext(), currentUser(c), oid)
	if errors.Is(err, backend.ErrNotFound) || errors.Is(err, backend.ErrUnauthorized) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return notFound(c, "Order not found")
	}
	if err != nil {
		applog.Error(c, "order.view.fail", err, map[string]any{"order_id": oid})
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "Could not load order"})
	}
	return render(c, "order", fiber.Map{"Order": o})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Checkout.History(c.UserContext(), currentUser(c))
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
