package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// List handles GET /products/:id/reviews.
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	pid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sum, err := h.Reviews.ForProduct(c.UserContext(), pid)
	if err != nil {
		return err
	}
	return c.JSON(sum)
}

// Create handles POST /reviews and POST /products/:id/reviews.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := bind(c, &req); err != nil {
		return err
	}
	if c.Params("id") != "" {
		pid, err := pathID(c, "id")
		if err != nil {
			return err
		}
		req.ProductID = pid
	}
	rv, err := h.Reviews.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rv)
}
