package handlers

import (
	"errors"

	"storefront/internal/backend"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	ps, err := h.Catalog.ListProducts(c.UserContext())
	if err != nil {
		log.Error(c, "catalog.list.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "The catalog is unavailable right now"})
	}
	return render(c, "home", fiber.Map{"Products": ps})
}

// GET /product/:id
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if errors.Is(err, backend.ErrNotFound) {
		return notFound(c, "This item is no longer available")
	}
	if err != nil {
		log.Error(c, "catalog.product.fail", err, map[string]any{"product": id})
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "The catalog is unavailable right now"})
	}
	return render(c, "product", fiber.Map{"P": p})
}
