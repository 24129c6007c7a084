package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusFailed    OrderStatus = "failed"
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further payment transition is allowed.
func (s OrderStatus) Terminal() bool { return s != StatusPending }

type Order struct {
	ID              string          `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"userId"`
	Status          OrderStatus     `db:"status" json:"status"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	ShippingFee     decimal.Decimal `db:"shipping_fee" json:"shippingFee"`
	Total           decimal.Decimal `db:"total" json:"total"`
	ShippingAddress string          `db:"shipping_address" json:"shippingAddress"`
	BillingAddress  string          `db:"billing_address" json:"billingAddress"`
	CustomerEmail   string          `db:"customer_email" json:"customerEmail"`
	CustomerName    string          `db:"customer_name" json:"customerName"`
	PaymentIntentID string          `db:"payment_intent_id" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem holds the price captured when the order was placed; it is
// never re-read from the catalog.
type OrderItem struct {
	OrderID   string          `db:"order_id" json:"orderId"`
	ProductID int64           `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
