package dto

import "time"

// LoginRequest entrada para login. Se acepta exactamente UNA combinación:
// email+password, username+password o phone_number+otp_code.
type LoginRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	OTPCode     string `json:"otp_code"`
}

// RegisterRequest entrada para registro de estudiante.
// El payload "suelto" del storefront se tipa acá con campos opcionales explícitos;
// los desconocidos se rechazan en el handler.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	Campus   string `json:"campus"`
}

// RegisterAdminRequest entrada estricta para alta de admin por invitación.
type RegisterAdminRequest struct {
	InviteToken string `json:"invite_token" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Username    string `json:"username" validate:"required,min=3,max=50"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
}

// InviteAdminRequest entrada para que un admin invite a otro.
type InviteAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendOTPRequest entrada para disparo de código de un solo uso.
// Identifier es un email o un teléfono E.164; el canal se decide por la forma.
type SendOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// ForgotPasswordRequest entrada para solicitar reset de contraseña.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest entrada para restablecer contraseña con token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// VerifyResetTokenResponse salida de la verificación previa del token de reset.
type VerifyResetTokenResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse salida con token de sesión + usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
