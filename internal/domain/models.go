package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `db:"id" json:"id"`
	Slug        string          `db:"slug" json:"slug"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Featured    bool            `db:"featured" json:"featured"`
	Bestseller  bool            `db:"bestseller" json:"bestseller"`
	IsNew       bool            `db:"is_new" json:"isNew"`
	ViewCount   int64           `db:"view_count" json:"viewCount"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// ProductFilter narrows catalog listings; zero values mean "any".
type ProductFilter struct {
	Featured   bool
	Bestseller bool
	New        bool
	Limit      int
	Offset     int
}

type CartItem struct {
	UserID    int64     `db:"user_id" json:"userId"`
	ProductID int64     `db:"product_id" json:"productId"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Review struct {
	ID        string    `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	ProductID int64     `db:"product_id" json:"productId"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Subscriber struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
