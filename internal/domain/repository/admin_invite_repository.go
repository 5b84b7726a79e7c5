package repository

import "github.com/unimercado/unimercado-api/internal/domain/entity"

// AdminInviteRepository define el puerto de persistencia para invitaciones de admin.
type AdminInviteRepository interface {
	Create(invite *entity.AdminInvite) error
	GetValidByEmail(email string) (*entity.AdminInvite, error) // no usada y no vencida
	MarkUsed(id string) error
}
