package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Storage contracts. Both the sqlx repos and repos.MemoryStore satisfy
// them; lookups of absent rows return domain.ErrNotFound.

type ProductStore interface {
	ProductByID(ctx context.Context, id int64) (domain.Product, error)
	ProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	IncrementViews(ctx context.Context, id int64) error
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error
}

type CartStore interface {
	// AddCartItem merges qty into an existing (user, product) row.
	AddCartItem(ctx context.Context, userID, productID int64, qty int) error
	SetCartQuantity(ctx context.Context, userID, productID int64, qty int) error
	CartItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error
}

type OrderStore interface {
	// CreateOrder persists the order with its items and removes the
	// purchased products from the user's cart as one atomic unit.
	CreateOrder(ctx context.Context, o domain.Order, decrementStock bool) error
	Order(ctx context.Context, id string) (domain.Order, error)
	OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	PendingOrders(ctx context.Context) ([]domain.Order, error)
	// TransitionOrder moves id from -> to and reports whether this call
	// won the transition.
	TransitionOrder(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error)
	SetPaymentIntent(ctx context.Context, id, intentID string) error
}

type ReviewStore interface {
	CreateReview(ctx context.Context, r domain.Review) error
	ReviewsByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
}

type FunnelStore interface {
	// CreateSubscriber returns domain.ErrConflict for a known email.
	CreateSubscriber(ctx context.Context, s domain.Subscriber) error
	CreateContactMessage(ctx context.Context, m domain.ContactMessage) error
}

type UserStore interface {
	UserByID(ctx context.Context, id int64) (*domain.User, error)
}

type Stores struct {
	Products ProductStore
	Carts    CartStore
	Orders   OrderStore
	Reviews  ReviewStore
	Funnel   FunnelStore
	Users    UserStore
}

// Notifier delivers the workflow's side-effect messages. Errors are
// logged by the caller and never propagated.
type Notifier interface {
	OrderReceived(ctx context.Context, o domain.Order) error
	PaymentConfirmed(ctx context.Context, o domain.Order) error
	SaleAlert(ctx context.Context, o domain.Order) error
	ContactReceived(ctx context.Context, m domain.ContactMessage) error
}
