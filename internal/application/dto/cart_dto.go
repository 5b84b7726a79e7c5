package dto

import "time"

// AddCartItemRequest entrada para agregar/incrementar una línea del carrito.
type AddCartItemRequest struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// UpdateCartItemRequest entrada para fijar la cantidad absoluta de una línea.
// Quantity 0 es válido y NO elimina la línea.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartItemResponse línea del carrito con snapshot de producto embebido.
type CartItemResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   ProductResponse `json:"product"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
