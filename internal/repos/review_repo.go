package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) CreateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO reviews(id, user_id, product_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Comment, rv.CreatedAt)
	return classify("review.create", err, "review")
}

func (r *ReviewRepo) ReviewsByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, user_id, product_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = ?
		ORDER BY created_at DESC
	`), productID)
	return out, classify("review.by_product", err, "reviews")
}
