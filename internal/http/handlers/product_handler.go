package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List handles GET /products?featured=1&bestseller=1&new=1&limit=&offset=.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := domain.ProductFilter{
		Featured:   c.QueryBool("featured"),
		Bestseller: c.QueryBool("bestseller"),
		New:        c.QueryBool("new"),
		Limit:      c.QueryInt("limit", 24),
		Offset:     c.QueryInt("offset", 0),
	}
	list, err := h.Catalog.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": list})
}

// Detail handles GET /products/:slug.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.Get(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}
