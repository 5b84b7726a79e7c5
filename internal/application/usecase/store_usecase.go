package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/unimercado/unimercado-api/internal/application/dto"
	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
	"github.com/unimercado/unimercado-api/internal/domain/repository"
	"github.com/unimercado/unimercado-api/pkg/slug"
)

// StoreUseCase casos de uso CRUD para tiendas de estudiantes.
type StoreUseCase struct {
	repo repository.StoreRepository
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo}
}

// Create abre una tienda para el usuario autenticado. El slug se deriva del nombre.
func (uc *StoreUseCase) Create(ownerID string, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	s := slug.Make(in.Name)
	if s == "" {
		return nil, domain.ErrInvalidInput
	}
	if existing, _ := uc.repo.GetBySlug(s); existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	store := &entity.Store{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Slug:        s,
		Description: in.Description,
		Campus:      in.Campus,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// GetByID obtiene una tienda por ID.
func (uc *StoreUseCase) GetByID(id string) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, nil
	}
	return toStoreResponse(store), nil
}

// Update actualiza una tienda. Solo el dueño (o un admin) puede hacerlo; el
// handler pasa callerID/callerRole ya extraídos del token.
func (uc *StoreUseCase) Update(id, callerID, callerRole string, in dto.UpdateStoreRequest) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, nil
	}
	if store.OwnerID != callerID && callerRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil {
		store.Name = *in.Name
		store.Slug = slug.Make(*in.Name)
	}
	if in.Description != nil {
		store.Description = *in.Description
	}
	if in.Campus != nil {
		store.Campus = *in.Campus
	}
	if in.Status != nil {
		store.Status = *in.Status
	}
	store.UpdatedAt = time.Now()
	if err := uc.repo.Update(store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// List lista tiendas con paginación; ownerID opcional filtra por dueño.
func (uc *StoreUseCase) List(ownerID string, limit, offset int) (*dto.StoreListResponse, error) {
	var list []*entity.Store
	var err error
	if ownerID != "" {
		list, err = uc.repo.ListByOwner(ownerID, limit, offset)
	} else {
		list, err = uc.repo.List(limit, offset)
	}
	if err != nil {
		return nil, err
	}
	out := &dto.StoreListResponse{
		Items: make([]dto.StoreResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, *toStoreResponse(s))
	}
	return out, nil
}

// Delete elimina una tienda (dueño o admin).
func (uc *StoreUseCase) Delete(id, callerID, callerRole string) error {
	store, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.ErrNotFound
	}
	if store.OwnerID != callerID && callerRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(id)
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		Campus:      s.Campus,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
