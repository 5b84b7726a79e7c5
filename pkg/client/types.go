package client

import "github.com/shopspring/decimal"

// User vista del cliente sobre la cuenta autenticada.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Product snapshot de producto embebido en una línea de carrito. Price viaja
// como decimal en texto en el JSON y se parsea numéricamente al decodificar.
type Product struct {
	ID       string          `json:"id"`
	StoreID  string          `json:"store_id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"image_url"`
}

// CartItem línea del carrito del usuario. Quantity ausente en el JSON
// decodifica a 0, que es como debe contarse.
type CartItem struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// Credentials credenciales de login. Debe venir completa exactamente una
// combinación: Email+Password, Username+Password o PhoneNumber+OTPCode. La
// validez de la combinación la decide el backend, no el cliente.
type Credentials struct {
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	OTPCode     string `json:"otp_code,omitempty"`
}

// RegisterData payload de registro de estudiante. Los campos opcionales son
// explícitos; el backend valida los requeridos.
type RegisterData struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Campus   string `json:"campus,omitempty"`
}

// AdminRegisterData payload estricto del alta de admin por invitación.
type AdminRegisterData struct {
	InviteToken string `json:"invite_token"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
