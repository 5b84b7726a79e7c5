package repository

import "github.com/unimercado/unimercado-api/internal/domain/entity"

// ProductFilter criterios de búsqueda del catálogo.
type ProductFilter struct {
	Search     string // match parcial sobre nombre/descripción
	CategoryID string
	StoreID    string
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByStoreAndSlug(storeID, slug string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(productID string, delta int) error
	Search(filter ProductFilter) ([]*entity.Product, error)
	Delete(id string) error
}
