package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, user_id, status, subtotal, shipping_fee, total, shipping_address, billing_address,
	customer_email, customer_name, payment_intent_id, created_at, updated_at`

// CreateOrder writes the order header, its items and the cart clear in one
// transaction: the header goes first (items reference it) and the cart is
// only cleared once both succeeded.
func (r *OrderRepo) CreateOrder(ctx context.Context, o domain.Order, decrementStock bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Persistence("order.begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO orders(`+orderCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), o.ID, o.UserID, string(o.Status), o.Subtotal.String(), o.ShippingFee.String(), o.Total.String(), o.ShippingAddress, o.BillingAddress,
		o.CustomerEmail, o.CustomerName, o.PaymentIntentID, o.CreatedAt, o.UpdatedAt); err != nil {
		return domain.Persistence("order.insert", err)
	}

	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO order_items(order_id, product_id, name, quantity, price)
			VALUES (?, ?, ?, ?, ?)
		`), o.ID, it.ProductID, it.Name, it.Quantity, it.Price.String()); err != nil {
			return domain.Persistence("order.insert_item", err)
		}
		if decrementStock {
			res, err := tx.ExecContext(ctx, tx.Rebind(`
				UPDATE products SET stock = stock - ?
				WHERE id = ? AND stock >= ?
			`), it.Quantity, it.ProductID, it.Quantity)
			if err != nil {
				return domain.Persistence("order.decrement_stock", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.Validation("insufficient stock for product %d", it.ProductID)
			}
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			DELETE FROM cart_items WHERE user_id = ? AND product_id = ?
		`), o.UserID, it.ProductID); err != nil {
			return domain.Persistence("order.clear_cart", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Persistence("order.commit", err)
	}
	return nil
}

func (r *OrderRepo) Order(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, classify("order.get", err, "order %s", id)
	}
	items := []domain.OrderItem{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT order_id, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY product_id
	`), id); err != nil {
		return domain.Order{}, classify("order.items", err, "order %s", id)
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
	`), userID)
	return out, classify("order.by_user", err, "orders")
}

func (r *OrderRepo) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+orderCols+`
		FROM orders
		WHERE status = ?
		ORDER BY created_at
	`), string(domain.StatusPending))
	return out, classify("order.pending", err, "orders")
}

// TransitionOrder is a conditional update: concurrent reconciliations of
// the same order race on the WHERE clause and exactly one wins.
func (r *OrderRepo) TransitionOrder(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`), string(to), at, id, string(from))
	if err != nil {
		return false, domain.Persistence("order.transition", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.Persistence("order.transition", err)
	}
	return n == 1, nil
}

func (r *OrderRepo) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE orders SET payment_intent_id = ?, updated_at = ? WHERE id = ?
	`), intentID, time.Now().UTC(), id)
	if err != nil {
		return domain.Persistence("order.set_intent", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("order %s", id)
	}
	return nil
}
