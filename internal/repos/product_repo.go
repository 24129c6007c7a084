package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, slug, name, description, price, stock, featured, bestseller, is_new, view_count, created_at`

func (r *ProductRepo) ProductByID(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, classify("product.get", err, "product %d", id)
}

func (r *ProductRepo) ProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE slug = ?`), slug)
	return p, classify("product.by_slug", err, "product %q", slug)
}

func (r *ProductRepo) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	where := `1 = 1`
	if f.Featured {
		where += ` AND featured = ?`
	}
	if f.Bestseller {
		where += ` AND bestseller = ?`
	}
	if f.New {
		where += ` AND is_new = ?`
	}
	args := []any{}
	for _, on := range []bool{f.Featured, f.Bestseller, f.New} {
		if on {
			args = append(args, true)
		}
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	args = append(args, limit, max(f.Offset, 0))

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE `+where+`
		ORDER BY id
		LIMIT ? OFFSET ?`), args...)
	return out, classify("product.list", err, "products")
}

func (r *ProductRepo) IncrementViews(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE products SET view_count = view_count + 1 WHERE id = ?`), id)
	if err != nil {
		return classify("product.views", err, "product %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("product %d", id)
	}
	return nil
}

func (r *ProductRepo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE products SET price = ? WHERE id = ?`), price.String(), id)
	if err != nil {
		return classify("product.price", err, "product %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("product %d", id)
	}
	return nil
}
