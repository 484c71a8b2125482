package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/pricing"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
}

// LineView is a cart line priced for display.
type LineView struct {
	cart.Line
	Unit    pricing.LineSubtotal
	Total   int64
	ETADays int
	AddOns  []domain.AddOn
}

// Has reports whether add-on id is selected on the line.
func (v LineView) Has(id string) bool {
	for _, a := range v.AddOnIDs {
		if a == id {
			return true
		}
	}
	return false
}

func lineViews(lines []cart.Line) []LineView {
	out := make([]LineView, 0, len(lines))
	for _, l := range lines {
		unit := pricing.Line(l.Product, l.AddOnIDs)
		v := LineView{
			Line:    l,
			Unit:    unit,
			Total:   unit.Total * int64(l.Quantity),
			ETADays: pricing.LineETA(l.Product, l.AddOnIDs),
		}
		for _, id := range l.AddOnIDs {
			if a, ok := l.Product.AddOn(id); ok {
				v.AddOns = append(v.AddOns, a)
			}
		}
		out = append(out, v)
	}
	return out
}

// knownAddOns drops ids the product does not offer.
func knownAddOns(p domain.Product, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := p.AddOn(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// formValues returns every value of a repeated form field.
func formValues(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		out = append(out, string(v))
	}
	if len(out) == 0 {
		if mf, err := c.MultipartForm(); err == nil {
			out = append(out, mf.Value[key]...)
		}
	}
	return out
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	store := cartOf(c)
	return render(c, "cart", fiber.Map{
		"Lines":   lineViews(store.Lines()),
		"Totals":  store.Totals(),
		"Preview": h.Checkout.Preview(store),
	})
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	brief, ok := validate.Brief(utils.CopyString(c.FormValue("brief")))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "brief"})
		return c.Status(fiber.StatusBadRequest).SendString("brief too long")
	}
	qty := validate.Qty(c.FormValue("qty"))

	p, err := h.Catalog.GetProduct(c.UserContext(), productID)
	if errors.Is(err, backend.ErrNotFound) {
		return notFound(c, "This item is no longer available")
	}
	if err != nil {
		log.Error(c, "cart.add.fail", err, map[string]any{"product": productID})
		return c.Status(fiber.StatusBadGateway).SendString("catalog unavailable")
	}

	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	addOns := knownAddOns(p, validate.IDs(formValues(c, "addons")))
	store.Add(p, addOns, qty, brief)
	log.Info(c, "cart.add", map[string]any{"product": p.ID, "qty": qty, "addons": len(addOns)})
	return c.Redirect("/cart")
}

// lineFor resolves the :id route param to an existing line of store.
func lineFor(c *fiber.Ctx, store *cart.Store) (cart.Line, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "line"})
		return cart.Line{}, false
	}
	return store.Line(id)
}

// POST /cart/:id/qty
func (h *CartHandler) SetQty(c *fiber.Ctx) error {
	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	if l, ok := lineFor(c, store); ok {
		store.SetQty(l.Product.ID, validate.Qty(c.FormValue("qty")))
	}
	return c.Redirect("/cart")
}

// POST /cart/:id/addons
func (h *CartHandler) SetAddOns(c *fiber.Ctx) error {
	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	if l, ok := lineFor(c, store); ok {
		store.SetAddOns(l.Product.ID, knownAddOns(l.Product, validate.IDs(formValues(c, "addons"))))
	}
	return c.Redirect("/cart")
}

// POST /cart/:id/brief
func (h *CartHandler) SetBrief(c *fiber.Ctx) error {
	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	l, ok := lineFor(c, store)
	if !ok {
		return c.Redirect("/cart")
	}
	brief, ok := validate.Brief(utils.CopyString(c.FormValue("brief")))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "brief"})
		return c.Status(fiber.StatusBadRequest).SendString("brief too long")
	}
	store.SetBrief(l.Product.ID, brief)
	return c.Redirect("/cart")
}

// POST /cart/:id/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	if l, ok := lineFor(c, store); ok {
		store.Remove(l.Product.ID)
		log.Info(c, "cart.remove", map[string]any{"product": l.Product.ID})
	}
	return c.Redirect("/cart")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	store, ok := mutableCart(c)
	if !ok {
		return staleSession(c)
	}
	store.Clear()
	log.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

// GET /api/v1/cart
func (h *CartHandler) API(c *fiber.Ctx) error {
	store := cartOf(c)
	var userID *string
	if id := store.UserID(); id != "" {
		userID = &id
	}
	return c.JSON(fiber.Map{
		"userId":  userID,
		"lines":   store.Lines(),
		"totals":  store.Totals(),
		"preview": h.Checkout.Preview(store),
	})
}
