package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo publicado en una tienda del campus.
// Price viaja como NUMERIC en la DB y como texto decimal en JSON; nunca float.
type Product struct {
	ID          string
	StoreID     string
	CategoryID  string
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	Status      string // active, inactive, sold_out
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
