package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type FunnelHandler struct {
	Funnel *services.FunnelService
}

// Subscribe handles POST /subscribers.
func (h *FunnelHandler) Subscribe(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.Funnel.Subscribe(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// Contact handles POST /contact.
func (h *FunnelHandler) Contact(c *fiber.Ctx) error {
	var req services.ContactInput
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.Funnel.Contact(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": m.ID, "received": true})
}
