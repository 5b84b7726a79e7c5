package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/unimercado/unimercado-api/internal/application/dto"
	"github.com/unimercado/unimercado-api/internal/application/ports"
	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
	"github.com/unimercado/unimercado-api/internal/domain/repository"
	"github.com/unimercado/unimercado-api/pkg/jwt"
)

// Config parámetros del caso de uso de autenticación.
type Config struct {
	JWTSecret     string
	JWTExpMinutes int
	JWTIssuer     string
	OTPTTL        time.Duration
	InviteTTL     time.Duration
	ResetTTL      time.Duration
	AppBaseURL    string // para armar links de invitación y de reset
}

// AuthUseCase casos de uso de autenticación: login (password u OTP), registro,
// invitación de admins, códigos de un solo uso y reset de contraseña.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	inviteRepo repository.AdminInviteRepository
	resetRepo  repository.PasswordResetRepository
	otpStore   ports.OTPStore
	mailer     ports.Mailer
	otpSender  ports.OTPSender
	cfg        Config
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	inviteRepo repository.AdminInviteRepository,
	resetRepo repository.PasswordResetRepository,
	otpStore ports.OTPStore,
	mailer ports.Mailer,
	otpSender ports.OTPSender,
	cfg Config,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		resetRepo:  resetRepo,
		otpStore:   otpStore,
		mailer:     mailer,
		otpSender:  otpSender,
		cfg:        cfg,
	}
}

// Login acepta exactamente una combinación de credenciales:
// email+password, username+password o phone_number+otp_code.
// Cero o más de una combinación completa => ErrInvalidInput.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	byEmail := in.Email != "" && in.Password != ""
	byUsername := in.Username != "" && in.Password != ""
	byPhone := in.PhoneNumber != "" && in.OTPCode != ""

	combos := 0
	for _, ok := range []bool{byEmail, byUsername, byPhone} {
		if ok {
			combos++
		}
	}
	if combos != 1 {
		return nil, domain.ErrInvalidInput
	}

	var user *entity.User
	var err error

	switch {
	case byEmail:
		user, err = uc.userRepo.GetByEmail(in.Email)
	case byUsername:
		user, err = uc.userRepo.GetByUsername(in.Username)
	case byPhone:
		user, err = uc.userRepo.GetByPhone(in.PhoneNumber)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if byPhone {
		ok, err := uc.otpStore.Verify(ctx, in.PhoneNumber, in.OTPCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrInvalidOTP
		}
	} else {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
			return nil, domain.ErrUnauthorized
		}
	}

	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}

	token, err := jwt.Generate(uc.cfg.JWTSecret, user.ID, user.Role, uc.cfg.JWTIssuer, uc.cfg.JWTExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// Register crea una cuenta de estudiante: hashea password con bcrypt y persiste.
// Devuelve LoginResponse para que el storefront quede logueado tras el registro.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	if existing, _ := uc.userRepo.GetByEmail(in.Email); existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if existing, _ := uc.userRepo.GetByUsername(in.Username); existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         entity.RoleStudent,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.cfg.JWTSecret, user.ID, user.Role, uc.cfg.JWTIssuer, uc.cfg.JWTExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// InviteAdmin crea una invitación para el email indicado y envía el link por correo.
// El token viaja en claro por correo; en la DB solo queda su hash SHA-256.
func (uc *AuthUseCase) InviteAdmin(ctx context.Context, in dto.InviteAdminRequest) error {
	if existing, _ := uc.userRepo.GetByEmail(in.Email); existing != nil {
		return domain.ErrEmailAlreadyExists
	}
	token, err := newToken()
	if err != nil {
		return err
	}
	invite := &entity.AdminInvite{
		ID:        uuid.New().String(),
		Email:     in.Email,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(uc.cfg.InviteTTL),
		CreatedAt: time.Now(),
	}
	if err := uc.inviteRepo.Create(invite); err != nil {
		return err
	}
	link := fmt.Sprintf("%s/admin/register?token=%s", uc.cfg.AppBaseURL, token)
	body := "Fuiste invitado a administrar UniMercado.\n\n" +
		"Completa tu registro acá: " + link + "\n\n" +
		"El link vence en " + invite.ExpiresAt.Sub(time.Now()).Round(time.Hour).String() + "."
	return uc.mailer.Send(ctx, in.Email, "Invitación de administrador — UniMercado", body)
}

// RegisterAdmin consume una invitación vigente y crea la cuenta admin.
func (uc *AuthUseCase) RegisterAdmin(ctx context.Context, in dto.RegisterAdminRequest) (*dto.LoginResponse, error) {
	invite, err := uc.inviteRepo.GetValidByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if invite == nil || invite.TokenHash != hashToken(in.InviteToken) {
		return nil, domain.ErrInviteInvalid
	}
	if existing, _ := uc.userRepo.GetByUsername(in.Username); existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.FirstName + " " + in.LastName),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	if err := uc.inviteRepo.MarkUsed(invite.ID); err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.cfg.JWTSecret, user.ID, user.Role, uc.cfg.JWTIssuer, uc.cfg.JWTExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// SendOTP genera un código de 6 dígitos y lo entrega por el canal que indica
// la forma del identifier: con "@" es correo, si no es teléfono (WhatsApp).
// No muta estado de sesión; el código se guarda hasheado con TTL.
func (uc *AuthUseCase) SendOTP(ctx context.Context, in dto.SendOTPRequest) error {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" {
		return domain.ErrInvalidInput
	}

	var user *entity.User
	var err error
	isEmail := strings.Contains(identifier, "@")
	if isEmail {
		user, err = uc.userRepo.GetByEmail(identifier)
	} else {
		user, err = uc.userRepo.GetByPhone(identifier)
	}
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.otpStore.Save(ctx, identifier, string(codeHash), uc.cfg.OTPTTL); err != nil {
		return err
	}

	if isEmail {
		body := "Tu código de acceso a UniMercado es: " + code + "\n\n" +
			"Vence en " + uc.cfg.OTPTTL.String() + ". Si no lo pediste, ignora este correo."
		return uc.mailer.Send(ctx, identifier, "Tu código de acceso — UniMercado", body)
	}
	return uc.otpSender.SendOTP(ctx, identifier, code)
}

// ForgotPassword emite un token de reset y lo envía por correo.
// Si el email no existe responde sin error para no filtrar cuentas.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) error {
	user, err := uc.userRepo.GetByEmail(in.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	// Invalida tokens previos del mismo usuario
	if err := uc.resetRepo.DeleteByUser(user.ID); err != nil {
		return err
	}
	token, err := newToken()
	if err != nil {
		return err
	}
	reset := &entity.PasswordReset{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(uc.cfg.ResetTTL),
		CreatedAt: time.Now(),
	}
	if err := uc.resetRepo.Create(reset); err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", uc.cfg.AppBaseURL, token)
	body := "Pediste restablecer tu contraseña de UniMercado.\n\n" +
		"Usa este link: " + link + "\n\n" +
		"Vence en " + uc.cfg.ResetTTL.String() + "."
	return uc.mailer.Send(ctx, user.Email, "Restablecer contraseña — UniMercado", body)
}

// VerifyResetToken responde si el token de reset sigue vigente (pre-chequeo del form).
func (uc *AuthUseCase) VerifyResetToken(ctx context.Context, token string) (*dto.VerifyResetTokenResponse, error) {
	if token == "" {
		return &dto.VerifyResetTokenResponse{Valid: false, Message: "token requerido"}, nil
	}
	reset, err := uc.resetRepo.GetValidByTokenHash(hashToken(token))
	if err != nil {
		return nil, err
	}
	if reset == nil {
		return &dto.VerifyResetTokenResponse{Valid: false, Message: "token inválido o expirado"}, nil
	}
	return &dto.VerifyResetTokenResponse{Valid: true, Message: "token válido"}, nil
}

// ResetPassword consume el token y fija la nueva contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	reset, err := uc.resetRepo.GetValidByTokenHash(hashToken(in.Token))
	if err != nil {
		return err
	}
	if reset == nil {
		return domain.ErrResetTokenInvalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.userRepo.UpdatePassword(reset.UserID, string(hash)); err != nil {
		return err
	}
	return uc.resetRepo.MarkUsed(reset.ID)
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// generateOTP genera un código de 6 dígitos con crypto/rand (100000..999999).
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// newToken genera un token opaco de 32 bytes en hex.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken SHA-256 en hex; permite buscar por hash sin guardar el token en claro.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
