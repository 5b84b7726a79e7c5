package repository

import "github.com/unimercado/unimercado-api/internal/domain/entity"

// PasswordResetRepository define el puerto de persistencia para tokens de reset.
type PasswordResetRepository interface {
	Create(reset *entity.PasswordReset) error
	GetValidByTokenHash(tokenHash string) (*entity.PasswordReset, error)
	MarkUsed(id string) error
	DeleteByUser(userID string) error
}
