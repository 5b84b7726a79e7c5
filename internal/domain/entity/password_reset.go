package entity

import "time"

// PasswordReset token de restablecimiento de contraseña (hash, un solo uso).
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
