package dto

import "time"

// CreateStoreRequest entrada para abrir una tienda.
type CreateStoreRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	Campus      string `json:"campus"`
}

// UpdateStoreRequest entrada para actualizar una tienda (campos opcionales).
type UpdateStoreRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Campus      *string `json:"campus"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// StoreResponse salida de una tienda.
type StoreResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Campus      string    `json:"campus"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoreListResponse lista paginada de tiendas.
type StoreListResponse struct {
	Items []StoreResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
