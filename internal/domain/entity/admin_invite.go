package entity

import "time"

// AdminInvite invitación para crear una cuenta admin. El token viaja por correo
// y solo se guarda su hash; un solo uso, con vencimiento.
type AdminInvite struct {
	ID        string
	Email     string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time // nil mientras no se consuma
	CreatedAt time.Time
}
