package repository

import "github.com/unimercado/unimercado-api/internal/domain/entity"

// CartRepository define el puerto de persistencia para el carrito (DIP).
// ListByUser devuelve cada línea con el snapshot de producto embebido.
type CartRepository interface {
	ListByUser(userID string) ([]*entity.CartItem, error)
	GetByID(id string) (*entity.CartItem, error)
	Upsert(item *entity.CartItem) error // crea o incrementa (user_id, product_id)
	UpdateQuantity(id string, quantity int) error
	Delete(id string) error
	DeleteByUser(userID string) error
}
