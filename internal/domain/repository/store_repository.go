package repository

import "github.com/unimercado/unimercado-api/internal/domain/entity"

// StoreRepository define el puerto de persistencia para Store (DIP).
type StoreRepository interface {
	Create(store *entity.Store) error
	GetByID(id string) (*entity.Store, error)
	GetBySlug(slug string) (*entity.Store, error)
	Update(store *entity.Store) error
	ListByOwner(ownerID string, limit, offset int) ([]*entity.Store, error)
	List(limit, offset int) ([]*entity.Store, error)
	Delete(id string) error
}
