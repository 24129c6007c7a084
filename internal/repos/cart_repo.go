package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) AddCartItem(ctx context.Context, userID, productID int64, qty int) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO cart_items(user_id, product_id, quantity, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = excluded.updated_at
	`), userID, productID, qty, now, now)
	return classify("cart.add", err, "cart item")
}

func (r *CartRepo) SetCartQuantity(ctx context.Context, userID, productID int64, qty int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE cart_items SET quantity = ?, updated_at = ?
		WHERE user_id = ? AND product_id = ?
	`), qty, time.Now().UTC(), userID, productID)
	if err != nil {
		return classify("cart.set", err, "cart item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("product %d is not in the cart", productID)
	}
	return nil
}

func (r *CartRepo) CartItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = ?
		ORDER BY created_at, product_id
	`), userID)
	return out, classify("cart.items", err, "cart")
}

func (r *CartRepo) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`), userID, productID)
	return classify("cart.remove", err, "cart item")
}

func (r *CartRepo) ClearCart(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE user_id = ?`), userID)
	return classify("cart.clear", err, "cart")
}
