package services

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CartService struct {
	Carts CartStore
	Prods ProductStore
}

func NewCartService(carts CartStore, prods ProductStore) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

const maxLineQty = 99

func (s *CartService) Add(ctx context.Context, userID, productID int64, qty int) error {
	if userID <= 0 {
		return domain.Validation("userId must be positive")
	}
	if qty < 1 {
		qty = 1
	}
	if qty > maxLineQty {
		qty = maxLineQty
	}
	if _, err := s.Prods.ProductByID(ctx, productID); err != nil {
		return err
	}
	return s.Carts.AddCartItem(ctx, userID, productID, qty)
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return s.Carts.RemoveCartItem(ctx, userID, productID)
	}
	if qty > maxLineQty {
		return domain.Validation("quantity must be at most %d", maxLineQty)
	}
	return s.Carts.SetCartQuantity(ctx, userID, productID, qty)
}

func (s *CartService) Remove(ctx context.Context, userID, productID int64) error {
	return s.Carts.RemoveCartItem(ctx, userID, productID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.Carts.ClearCart(ctx, userID)
}

type CartLine struct {
	ProductID int64           `json:"productId"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type CartView struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View prices the cart at current catalog prices. Lines whose product has
// disappeared are skipped.
func (s *CartService) View(ctx context.Context, userID int64) (CartView, error) {
	rows, err := s.Carts.CartItems(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	view := CartView{Items: []CartLine{}, Subtotal: decimal.Zero}
	for _, r := range rows {
		p, err := s.Prods.ProductByID(ctx, r.ProductID)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return CartView{}, err
		}
		line := CartLine{
			ProductID: p.ID, Slug: p.Slug, Name: p.Name, Quantity: r.Quantity,
			Price: p.Price, LineTotal: p.Price.Mul(decimal.NewFromInt(int64(r.Quantity))),
		}
		view.Items = append(view.Items, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
	}
	return view, nil
}
