package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order orden creada en el checkout a partir del carrito del usuario.
type Order struct {
	ID        string
	UserID    string
	Status    string
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []OrderItem
}

// OrderItem línea de orden con snapshot de precio al momento del checkout.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal // precio congelado; el producto puede cambiar después
	Quantity    int
	Subtotal    decimal.Decimal
}
