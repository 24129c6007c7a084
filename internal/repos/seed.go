package repos

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

func demoProducts() []domain.Product {
	p := func(id int64, slug, name, desc, price string, stock int, featured, best, isNew bool) domain.Product {
		return domain.Product{
			ID: id, Slug: slug, Name: name, Description: desc,
			Price: decimal.RequireFromString(price), Stock: stock,
			Featured: featured, Bestseller: best, IsNew: isNew,
		}
	}
	return []domain.Product{
		p(1, "classic-logo-tee", "Classic Logo Tee", "Heavyweight cotton tee with the original logo.", "29.95", 120, true, true, false),
		p(2, "canvas-tote", "Canvas Tote", "Waxed canvas tote with leather handles.", "24.00", 60, false, true, false),
		p(3, "enamel-mug", "Enamel Camp Mug", "12 oz enamel mug, dishwasher safe.", "16.50", 200, false, false, true),
		p(4, "wool-beanie", "Merino Beanie", "Ribbed merino wool beanie.", "34.00", 45, true, false, true),
		p(5, "sticker-pack", "Sticker Pack", "Five vinyl stickers.", "6.99", 500, false, false, false),
	}
}

type seedUser struct {
	ID          int64
	Email, Name string
	Raw         string
}

func demoUsers() []seedUser {
	return []seedUser{
		{1, "alice@storefront.test", "Alice", "Passw0rd!"},
		{2, "bob@storefront.test", "Bob", "Passw0rd!"},
		{7, "grace@storefront.test", "Grace", "Passw0rd!"},
	}
}

func hashPassword(raw string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] bcrypt: %v", err)
		return ""
	}
	return string(h)
}

// Seed inserts the demo catalog and users. Safe to run on every startup
// (idempotent).
func Seed(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, p := range demoProducts() {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO products(id, slug, name, description, price, stock, featured, bestseller, is_new, view_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
			ON CONFLICT DO NOTHING
		`), p.ID, p.Slug, p.Name, p.Description, p.Price.String(), p.Stock, p.Featured, p.Bestseller, p.IsNew, now); err != nil {
			return err
		}
	}

	for _, u := range demoUsers() {
		var n int
		if err := tx.Get(&n, tx.Rebind(`SELECT COUNT(*) FROM users WHERE id = ?`), u.ID); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO users(id, email, name, password_hash)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`), u.ID, u.Email, u.Name, hashPassword(u.Raw)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedMemory loads the same demo data into a MemoryStore.
func SeedMemory(m *MemoryStore) {
	for _, p := range demoProducts() {
		m.PutProduct(p)
	}
	for _, u := range demoUsers() {
		m.PutUser(domain.User{ID: u.ID, Email: u.Email, Name: u.Name, Hash: hashPassword(u.Raw)})
	}
}
