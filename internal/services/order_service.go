package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/money"
	"storefront/internal/payments"
	"storefront/internal/validate"
)

// OrderLine is one cart line as submitted by the client. Price is what the
// client displayed; the catalog price is always the one charged.
type OrderLine struct {
	ProductID int64           `json:"productId" validate:"gt=0"`
	Quantity  int             `json:"quantity" validate:"min=1,max=99"`
	Price     decimal.Decimal `json:"price"`
}

type OrderInput struct {
	UserID          int64       `json:"userId" validate:"gt=0"`
	ShippingAddress string      `json:"shippingAddress" validate:"required,max=500"`
	BillingAddress  string      `json:"billingAddress" validate:"max=500"`
	CustomerEmail   string      `json:"customerEmail" validate:"omitempty,storeemail"`
	CustomerName    string      `json:"customerName" validate:"max=100"`
	Lines           []OrderLine `json:"orderItems" validate:"max=50,dive"`
}

type OrderConfig struct {
	Currency       string
	Shipping       money.ShippingRule
	DecrementStock bool
}

type OrderService struct {
	Products ProductStore
	Orders   OrderStore
	Users    UserStore
	Gateway  payments.Gateway
	Notify   Notifier
	Tasks    *Background
	Cfg      OrderConfig

	now func() time.Time
}

func NewOrderService(st Stores, gw payments.Gateway, n Notifier, tasks *Background, cfg OrderConfig) *OrderService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if tasks == nil {
		tasks = NewBackground()
	}
	return &OrderService{
		Products: st.Products, Orders: st.Orders, Users: st.Users,
		Gateway: gw, Notify: n, Tasks: tasks, Cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const lookupConcurrency = 4

// SubmitOrder prices the lines from the catalog and persists the order,
// its items and the cart clear as one unit.
func (s *OrderService) SubmitOrder(ctx context.Context, in OrderInput) (domain.Order, error) {
	if len(in.Lines) == 0 {
		return domain.Order{}, domain.Validation("cart is empty")
	}
	if err := validate.Struct(in); err != nil {
		return domain.Order{}, err
	}
	seen := make(map[int64]bool, len(in.Lines))
	for _, l := range in.Lines {
		if seen[l.ProductID] {
			return domain.Order{}, domain.Validation("product %d appears more than once", l.ProductID)
		}
		seen[l.ProductID] = true
	}

	products, err := s.lookupProducts(ctx, in.Lines)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.now()
	o := domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Status:          domain.StatusPending,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		CustomerEmail:   in.CustomerEmail,
		CustomerName:    in.CustomerName,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if o.BillingAddress == "" {
		o.BillingAddress = o.ShippingAddress
	}
	s.fillCustomer(ctx, &o)

	subtotal := decimal.Zero
	clientTotal := decimal.Zero
	for i, l := range in.Lines {
		p := products[i]
		if p.Stock < l.Quantity {
			return domain.Order{}, domain.Validation("insufficient stock for %s (need %d, have %d)", p.Name, l.Quantity, p.Stock)
		}
		it := domain.OrderItem{OrderID: o.ID, ProductID: p.ID, Name: p.Name, Quantity: l.Quantity, Price: p.Price}
		o.Items = append(o.Items, it)
		subtotal = subtotal.Add(it.LineTotal())
		clientTotal = clientTotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	o.Subtotal = subtotal
	o.ShippingFee, o.Total = s.Cfg.Shipping.Totals(subtotal)

	if !clientTotal.IsZero() && !clientTotal.Equal(subtotal) {
		applog.Audit(nil, "order.price_mismatch", map[string]any{
			"order_id": o.ID, "server_total": subtotal.StringFixed(2), "client_total": clientTotal.StringFixed(2),
		})
	}

	if err := s.Orders.CreateOrder(ctx, o, s.Cfg.DecrementStock); err != nil {
		return domain.Order{}, err
	}
	applog.Audit(nil, "order.create", map[string]any{
		"order_id": o.ID, "user_id": o.UserID, "items": len(o.Items), "total": o.Total.StringFixed(2),
	})

	if s.Notify != nil {
		placed := o
		s.Tasks.Go(ctx, "order.notify.received", map[string]any{"order_id": o.ID}, func(ctx context.Context) error {
			return s.Notify.OrderReceived(ctx, placed)
		})
	}
	return o, nil
}

func (s *OrderService) lookupProducts(ctx context.Context, lines []OrderLine) ([]domain.Product, error) {
	products := make([]domain.Product, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, l := range lines {
		g.Go(func() error {
			p, err := s.Products.ProductByID(gctx, l.ProductID)
			if err != nil {
				return err
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

// fillCustomer defaults the contact details from the user record.
func (s *OrderService) fillCustomer(ctx context.Context, o *domain.Order) {
	if (o.CustomerEmail != "" && o.CustomerName != "") || s.Users == nil {
		return
	}
	u, err := s.Users.UserByID(ctx, o.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			applog.Warn(nil, "order.user_lookup", err, map[string]any{"user_id": o.UserID})
		}
		return
	}
	if u == nil {
		return
	}
	if o.CustomerEmail == "" {
		o.CustomerEmail = u.Email
	}
	if o.CustomerName == "" {
		o.CustomerName = u.Name
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, domain.NotFound("order %s", id)
	}
	return s.Orders.Order(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, domain.Validation("userId must be positive")
	}
	return s.Orders.OrdersByUser(ctx, userID)
}

// Drain waits for in-flight notifications.
func (s *OrderService) Drain(ctx context.Context) error {
	return s.Tasks.Drain(ctx)
}
