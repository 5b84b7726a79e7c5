package entity

import "time"

// CartItem línea de carrito de un usuario. Quantity >= 0; quantity 0 NO elimina
// la línea — el borrado es siempre una operación explícita del caller.
// Product es el snapshot embebido que se devuelve al leer el carrito.
type CartItem struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	Product   *Product
	CreatedAt time.Time
	UpdatedAt time.Time
}
