package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

type submitOrderRequest struct {
	Order struct {
		UserID          int64           `json:"userId"`
		ShippingAddress string          `json:"shippingAddress"`
		BillingAddress  string          `json:"billingAddress"`
		CustomerEmail   string          `json:"customerEmail"`
		CustomerName    string          `json:"customerName"`
		Total           decimal.Decimal `json:"total"`
	} `json:"order"`
	OrderItems []services.OrderLine `json:"orderItems"`
}

// Submit handles POST /orders.
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var req submitOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.Order.SubmitOrder(c.UserContext(), services.OrderInput{
		UserID:          req.Order.UserID,
		ShippingAddress: req.Order.ShippingAddress,
		BillingAddress:  req.Order.BillingAddress,
		CustomerEmail:   req.Order.CustomerEmail,
		CustomerName:    req.Order.CustomerName,
		Lines:           req.OrderItems,
	})
	if err != nil {
		applog.Security(c, "order.submit.fail", map[string]any{"user_id": req.Order.UserID, "error": err.Error()})
		return err
	}
	applog.Audit(c, "order.submit", map[string]any{
		"order_id":     o.ID,
		"server_total": o.Total.StringFixed(2),
		"client_total": req.Order.Total.StringFixed(2),
		"mismatch":     !req.Order.Total.IsZero() && !req.Order.Total.Equal(o.Total),
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Order.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(o)
}

// History handles GET /users/:userId/orders.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	list, err := h.Order.ListOrders(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": list})
}
