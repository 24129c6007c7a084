package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type ReviewInput struct {
	UserID    int64  `json:"userId" validate:"gt=0"`
	ProductID int64  `json:"productId" validate:"gt=0"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type ReviewService struct {
	Reviews ReviewStore
	Prods   ProductStore
}

func NewReviewService(reviews ReviewStore, prods ProductStore) *ReviewService {
	return &ReviewService{Reviews: reviews, Prods: prods}
}

func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (domain.Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validate.Struct(in); err != nil {
		return domain.Review{}, err
	}
	if _, err := s.Prods.ProductByID(ctx, in.ProductID); err != nil {
		return domain.Review{}, err
	}
	rv := domain.Review{
		ID: uuid.NewString(), UserID: in.UserID, ProductID: in.ProductID,
		Rating: in.Rating, Comment: in.Comment, CreatedAt: time.Now().UTC(),
	}
	if err := s.Reviews.CreateReview(ctx, rv); err != nil {
		return domain.Review{}, err
	}
	applog.Info(nil, "review.create", map[string]any{"review_id": rv.ID, "product_id": rv.ProductID, "rating": rv.Rating})
	return rv, nil
}

type ReviewSummary struct {
	Reviews []domain.Review `json:"reviews"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// ForProduct lists reviews newest first with the average rating rounded
// to one decimal.
func (s *ReviewService) ForProduct(ctx context.Context, productID int64) (ReviewSummary, error) {
	if _, err := s.Prods.ProductByID(ctx, productID); err != nil {
		return ReviewSummary{}, err
	}
	list, err := s.Reviews.ReviewsByProduct(ctx, productID)
	if err != nil {
		return ReviewSummary{}, err
	}
	sum := ReviewSummary{Reviews: list, Count: len(list), Average: decimal.Zero}
	if len(list) > 0 {
		total := 0
		for _, r := range list {
			total += r.Rating
		}
		sum.Average = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(list)))).Round(1)
	}
	return sum, nil
}
