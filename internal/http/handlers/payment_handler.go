package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/payments"
	"storefront/internal/services"
)

type PaymentHandler struct {
	Order *services.OrderService
}

// CreateIntent handles POST /payment-intents.
func (h *PaymentHandler) CreateIntent(c *fiber.Ctx) error {
	var req services.PaymentIntentInput
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := h.Order.CreatePaymentIntent(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clientSecret": in.ClientSecret, "intentId": in.ID})
}

// Webhook handles POST /webhook. The body is verified byte for byte, so it
// is never parsed before the signature check.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	res, err := h.Order.ReconcileWebhookEvent(c.UserContext(), payload, c.Get(payments.SignatureHeader))
	if err != nil {
		return err
	}
	applog.Info(c, "webhook.received", map[string]any{
		"event_id": res.EventID, "type": res.Type, "order_id": res.OrderID, "outcome": res.Outcome,
	})
	return c.JSON(fiber.Map{"received": true})
}
