package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrUsernameTaken       = errors.New("el username ya está en uso")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidOTP          = errors.New("código OTP inválido o expirado")
	ErrInviteInvalid       = errors.New("invitación inválida o expirada")
	ErrResetTokenInvalid   = errors.New("token de reset inválido o expirado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrEmptyCart           = errors.New("el carrito está vacío")
)
