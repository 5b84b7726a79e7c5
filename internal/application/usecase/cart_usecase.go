package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/unimercado/unimercado-api/internal/application/dto"
	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
	"github.com/unimercado/unimercado-api/internal/domain/repository"
)

// CartUseCase casos de uso del carrito. Cada línea pertenece a un usuario y
// embebe el snapshot de producto al leerse. Quantity 0 es válido y conserva
// la línea; eliminar es siempre una operación explícita.
type CartUseCase struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(repo repository.CartRepository, productRepo repository.ProductRepository) *CartUseCase {
	return &CartUseCase{repo: repo, productRepo: productRepo}
}

// ListByUser devuelve el carrito completo del usuario, orden estable por creación.
func (uc *CartUseCase) ListByUser(userID string) ([]dto.CartItemResponse, error) {
	items, err := uc.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, *toCartItemResponse(it))
	}
	return out, nil
}

// AddItem crea la línea (user_id, product_id) o incrementa su cantidad.
func (uc *CartUseCase) AddItem(in dto.AddCartItemRequest) (*dto.CartItemResponse, error) {
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	item := &entity.CartItem{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Upsert(item); err != nil {
		return nil, err
	}
	item.Product = product
	return toCartItemResponse(item), nil
}

// GetItem devuelve una línea por ID (el handler la usa para verificar el dueño).
func (uc *CartUseCase) GetItem(id string) (*dto.CartItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toCartItemResponse(item), nil
}

// UpdateQuantity fija la cantidad absoluta de una línea. 0 la conserva en 0.
func (uc *CartUseCase) UpdateQuantity(id string, in dto.UpdateCartItemRequest) (*dto.CartItemResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.UpdateQuantity(id, in.Quantity); err != nil {
		return nil, err
	}
	item.Quantity = in.Quantity
	item.UpdatedAt = time.Now()
	return toCartItemResponse(item), nil
}

// RemoveItem elimina una línea por ID.
func (uc *CartUseCase) RemoveItem(id string) error {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

// ClearByUser vacía el carrito del usuario.
func (uc *CartUseCase) ClearByUser(userID string) error {
	return uc.repo.DeleteByUser(userID)
}

func toCartItemResponse(it *entity.CartItem) *dto.CartItemResponse {
	out := &dto.CartItemResponse{
		ID:        it.ID,
		UserID:    it.UserID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	if it.Product != nil {
		out.Product = *toProductResponse(it.Product)
	}
	return out
}
