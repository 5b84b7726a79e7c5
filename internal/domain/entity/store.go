package entity

import "time"

// Store tienda de un estudiante dentro del campus. Un usuario puede administrar varias.
type Store struct {
	ID          string
	OwnerID     string
	Name        string
	Slug        string // único, derivado del nombre
	Description string
	Campus      string // sede/campus donde opera la tienda
	Status      string // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
