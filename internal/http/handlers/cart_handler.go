package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartLineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// View handles GET /cart/:userId.
func (h *CartHandler) View(c *fiber.Ctx) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	v, err := h.Cart.View(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

// Add handles POST /cart/:userId/items, merging into an existing line.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	var req cartLineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Cart.Add(c.UserContext(), uid, req.ProductID, req.Quantity); err != nil {
		return err
	}
	return h.View(c)
}

// Update handles PUT /cart/:userId/items/:productId.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	pid, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	var req cartLineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Cart.SetQuantity(c.UserContext(), uid, pid, req.Quantity); err != nil {
		return err
	}
	return h.View(c)
}

// Remove handles DELETE /cart/:userId/items/:productId.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	pid, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	if err := h.Cart.Remove(c.UserContext(), uid, pid); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear handles DELETE /cart/:userId.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	if err := h.Cart.Clear(c.UserContext(), uid); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
