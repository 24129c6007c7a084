package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

type line struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,min=1,max=99"`
	Price     decimal.Decimal `json:"price" validate:"gt=0"`
}

type payload struct {
	Email string `json:"email" validate:"required,storeemail"`
	Lines []line `json:"lines" validate:"required,min=1,dive"`
}

func TestStruct(t *testing.T) {
	ok := payload{Email: "a@b.co", Lines: []line{{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("29.95")}}}
	assert.NoError(t, Struct(ok))

	err := Struct(payload{Email: "nope", Lines: ok.Lines})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "email must be a valid email")

	err = Struct(payload{Email: "a@b.co"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "lines is required")

	bad := payload{Email: "a@b.co", Lines: []line{{ProductID: 1, Quantity: 100, Price: decimal.NewFromInt(1)}}}
	err = Struct(bad)
	assert.Contains(t, err.Error(), "lines[0].quantity must be at most 99")

	neg := payload{Email: "a@b.co", Lines: []line{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(-1)}}}
	assert.Error(t, Struct(neg))
}

func TestFieldHelpers(t *testing.T) {
	_, ok := Email("alice@example.com")
	assert.True(t, ok)
	_, ok = Email("alice@")
	assert.False(t, ok)

	s, ok := Slug(" Retro-Tee ")
	assert.True(t, ok)
	assert.Equal(t, "retro-tee", s)
	_, ok = Slug("bad slug!")
	assert.False(t, ok)

	id, ok := ID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	_, ok = ID("0")
	assert.False(t, ok)

	assert.Equal(t, 1, Qty("x"))
	assert.Equal(t, 99, Qty("500"))
	assert.Equal(t, 3, Qty("3"))

	p, ok := Phone("+1 (555) 123-4567")
	assert.True(t, ok)
	assert.Equal(t, "5551234567", p)
	_, ok = Phone("12345")
	assert.False(t, ok)
}
