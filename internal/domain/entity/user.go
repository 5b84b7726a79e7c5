package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User representa una cuenta del marketplace (estudiante o admin del campus).
type User struct {
	ID           string
	Name         string
	Username     string // único; login alternativo al email
	Email        string
	Phone        string // E.164; login por OTP vía WhatsApp
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, student
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
