package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unimercado/unimercado-api/internal/application/auth"
	"github.com/unimercado/unimercado-api/internal/application/dto"
	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
	pkgjwt "github.com/unimercado/unimercado-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users     map[string]*entity.User // por ID
	passwords map[string]string       // ID -> hash actualizado vía UpdatePassword
}

func newFakeUserRepo(seed ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}, passwords: map[string]string{}}
	for _, u := range seed {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByPhone(phone string) (*entity.User, error) {
	if phone == "" {
		return nil, nil
	}
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *entity.User) error { r.users[u.ID] = u; return nil }

func (r *fakeUserRepo) UpdatePassword(id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	r.passwords[id] = hash
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) { return nil, nil }
func (r *fakeUserRepo) Delete(id string) error                         { delete(r.users, id); return nil }

type fakeInviteRepo struct {
	invites map[string]*entity.AdminInvite
	used    map[string]bool
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: map[string]*entity.AdminInvite{}, used: map[string]bool{}}
}

func (r *fakeInviteRepo) Create(inv *entity.AdminInvite) error {
	r.invites[inv.ID] = inv
	return nil
}

func (r *fakeInviteRepo) GetValidByEmail(email string) (*entity.AdminInvite, error) {
	for _, inv := range r.invites {
		if inv.Email == email && !r.used[inv.ID] && inv.ExpiresAt.After(time.Now()) {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInviteRepo) MarkUsed(id string) error { r.used[id] = true; return nil }

type fakeResetRepo struct {
	resets map[string]*entity.PasswordReset
	used   map[string]bool
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{resets: map[string]*entity.PasswordReset{}, used: map[string]bool{}}
}

func (r *fakeResetRepo) Create(p *entity.PasswordReset) error { r.resets[p.ID] = p; return nil }

func (r *fakeResetRepo) GetValidByTokenHash(h string) (*entity.PasswordReset, error) {
	for _, p := range r.resets {
		if p.TokenHash == h && !r.used[p.ID] && p.ExpiresAt.After(time.Now()) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeResetRepo) MarkUsed(id string) error { r.used[id] = true; return nil }

func (r *fakeResetRepo) DeleteByUser(userID string) error {
	for id, p := range r.resets {
		if p.UserID == userID {
			delete(r.resets, id)
		}
	}
	return nil
}

// fakeOTPStore guarda el hash en memoria y consume el código al verificar,
// igual que el store real sobre Redis.
type fakeOTPStore struct {
	hashes map[string]string
}

func newFakeOTPStore() *fakeOTPStore { return &fakeOTPStore{hashes: map[string]string{}} }

func (s *fakeOTPStore) Save(ctx context.Context, identifier, codeHash string, ttl time.Duration) error {
	s.hashes[identifier] = codeHash
	return nil
}

func (s *fakeOTPStore) Verify(ctx context.Context, identifier, code string) (bool, error) {
	hash, ok := s.hashes[identifier]
	if !ok {
		return false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return false, nil
	}
	delete(s.hashes, identifier) // un solo uso
	return true, nil
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct{ sent []sentMail }

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeOTPSender struct {
	phone, code string
	calls       int
}

func (s *fakeOTPSender) SendOTP(ctx context.Context, phone, code string) error {
	s.phone, s.code, s.calls = phone, code, s.calls+1
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del caso de uso
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret   = "secret-para-tests"
	testPassword = "contraseña-segura"
)

type fixture struct {
	uc      *auth.AuthUseCase
	users   *fakeUserRepo
	invites *fakeInviteRepo
	resets  *fakeResetRepo
	otps    *fakeOTPStore
	mailer  *fakeMailer
	sender  *fakeOTPSender
}

func newFixture(t *testing.T, seed ...*entity.User) *fixture {
	t.Helper()
	f := &fixture{
		users:   newFakeUserRepo(seed...),
		invites: newFakeInviteRepo(),
		resets:  newFakeResetRepo(),
		otps:    newFakeOTPStore(),
		mailer:  &fakeMailer{},
		sender:  &fakeOTPSender{},
	}
	f.uc = auth.NewAuthUseCase(f.users, f.invites, f.resets, f.otps, f.mailer, f.sender, auth.Config{
		JWTSecret:     testSecret,
		JWTExpMinutes: 60,
		JWTIssuer:     "unimercado-test",
		OTPTTL:        5 * time.Minute,
		InviteTTL:     48 * time.Hour,
		ResetTTL:      time.Hour,
		AppBaseURL:    "https://unimercado.test",
	})
	return f
}

func seedStudent(t *testing.T) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{
		ID:           "u-1",
		Name:         "Ana Rojas",
		Username:     "anar",
		Email:        "ana@unal.edu.co",
		Phone:        "+573001112233",
		PasswordHash: string(hash),
		Role:         entity.RoleStudent,
		Status:       "active",
	}
}

// extrae el token del link "...?token=<hex>" del cuerpo del correo.
func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "token=")
	require.GreaterOrEqual(t, i, 0, "el correo debe llevar el token en el link")
	rest := body[i+len("token="):]
	if j := strings.IndexAny(rest, " \n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// ──────────────────────────────────────────────────────────────────────────────
// Login — regla de exactamente una combinación
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_SinCombinacionCompleta_EsInvalido(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	casos := []dto.LoginRequest{
		{},                                  // nada
		{Email: "ana@unal.edu.co"},          // email sin password
		{Password: testPassword},            // password sin identidad
		{PhoneNumber: "+573001112233"},      // teléfono sin código
		{OTPCode: "123456"},                 // código sin teléfono
		{Username: "anar", OTPCode: "1234"}, // combinación cruzada incompleta
	}
	for _, in := range casos {
		_, err := f.uc.Login(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestLogin_DosCombinaciones_EsInvalido(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{
		Email:       "ana@unal.edu.co",
		Password:    testPassword,
		PhoneNumber: "+573001112233",
		OTPCode:     "123456",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"dos combinaciones completas a la vez deben rechazarse")
}

func TestLogin_EmailPassword_Exitoso(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	resp, err := f.uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@unal.edu.co", Password: testPassword,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "u-1", resp.User.ID)
	assert.Equal(t, "active", resp.User.Status)

	userID, role, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, entity.RoleStudent, role)
}

func TestLogin_UsernamePassword_Exitoso(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	resp, err := f.uc.Login(context.Background(), dto.LoginRequest{
		Username: "anar", Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.User.ID)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@unal.edu.co", Password: "otra-cosa",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{
		Email: "nadie@unal.edu.co", Password: testPassword,
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioSuspendido_Prohibido(t *testing.T) {
	u := seedStudent(t)
	u.Status = "suspended"
	f := newFixture(t, u)

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@unal.edu.co", Password: testPassword,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login por OTP (teléfono)
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_PorOTP_FlujoCompleto(t *testing.T) {
	f := newFixture(t, seedStudent(t))
	ctx := context.Background()

	// 1. Pedir el código: identifier con forma de teléfono → sale por WhatsApp
	require.NoError(t, f.uc.SendOTP(ctx, dto.SendOTPRequest{Identifier: "+573001112233"}))
	require.Equal(t, 1, f.sender.calls, "el código de teléfono debe salir por el sender")
	assert.Empty(t, f.mailer.sent, "no debe salir correo para un teléfono")
	assert.Len(t, f.sender.code, 6, "el código es de 6 dígitos")

	// 2. Login con el código recibido
	resp, err := f.uc.Login(ctx, dto.LoginRequest{
		PhoneNumber: "+573001112233", OTPCode: f.sender.code,
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.User.ID)

	// 3. El código es de un solo uso: reusarlo falla
	_, err = f.uc.Login(ctx, dto.LoginRequest{
		PhoneNumber: "+573001112233", OTPCode: f.sender.code,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOTP)
}

func TestLogin_OTPIncorrecto(t *testing.T) {
	f := newFixture(t, seedStudent(t))
	ctx := context.Background()

	require.NoError(t, f.uc.SendOTP(ctx, dto.SendOTPRequest{Identifier: "+573001112233"}))

	_, err := f.uc.Login(ctx, dto.LoginRequest{
		PhoneNumber: "+573001112233", OTPCode: "000000",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOTP)
}

func TestSendOTP_PorEmail_SaleElCorreo(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	require.NoError(t, f.uc.SendOTP(context.Background(), dto.SendOTPRequest{Identifier: "ana@unal.edu.co"}))

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ana@unal.edu.co", f.mailer.sent[0].to)
	assert.Zero(t, f.sender.calls, "identifier con @ nunca sale por WhatsApp")
}

func TestSendOTP_IdentifierDesconocido(t *testing.T) {
	f := newFixture(t)

	err := f.uc.SendOTP(context.Background(), dto.SendOTPRequest{Identifier: "nadie@unal.edu.co"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSendOTP_IdentifierVacio(t *testing.T) {
	f := newFixture(t)

	err := f.uc.SendOTP(context.Background(), dto.SendOTPRequest{Identifier: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de estudiante
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_CreaEstudianteYDevuelveSesion(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Register(context.Background(), dto.RegisterRequest{
		Name: "Luis Mora", Username: "lmora", Email: "luis@unal.edu.co", Password: "mi-password-8",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleStudent, resp.User.Role, "registro abierto siempre crea student")
	assert.Equal(t, "active", resp.User.Status)
	assert.NotEmpty(t, resp.Token, "el registro deja al usuario logueado")

	stored, err := f.users.GetByEmail("luis@unal.edu.co")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("mi-password-8")),
		"la contraseña se persiste hasheada con bcrypt")
}

func TestRegister_EmailDuplicado(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	_, err := f.uc.Register(context.Background(), dto.RegisterRequest{
		Name: "Otra Ana", Username: "ana2", Email: "ana@unal.edu.co", Password: "password-8",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_UsernameDuplicado(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	_, err := f.uc.Register(context.Background(), dto.RegisterRequest{
		Name: "Otra Ana", Username: "anar", Email: "ana2@unal.edu.co", Password: "password-8",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invitación y alta de admins
// ──────────────────────────────────────────────────────────────────────────────

func TestInviteAdmin_YRegisterAdmin_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.InviteAdmin(ctx, dto.InviteAdminRequest{Email: "nuevo@unal.edu.co"}))
	require.Len(t, f.mailer.sent, 1)
	token := tokenFromMail(t, f.mailer.sent[0].body)

	resp, err := f.uc.RegisterAdmin(ctx, dto.RegisterAdminRequest{
		InviteToken: token,
		Email:       "nuevo@unal.edu.co",
		Password:    "password-admin",
		Username:    "nuevoadmin",
		FirstName:   "Nuevo",
		LastName:    "Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)
	assert.Equal(t, "Nuevo Admin", resp.User.Name)

	// La invitación quedó consumida: un segundo alta con el mismo token falla
	_, err = f.uc.RegisterAdmin(ctx, dto.RegisterAdminRequest{
		InviteToken: token,
		Email:       "nuevo@unal.edu.co",
		Password:    "password-admin",
		Username:    "otroadmin",
		FirstName:   "Otro",
		LastName:    "Admin",
	})
	assert.ErrorIs(t, err, domain.ErrInviteInvalid, "la invitación es de un solo uso")
}

func TestInviteAdmin_EmailYaRegistrado(t *testing.T) {
	f := newFixture(t, seedStudent(t))

	err := f.uc.InviteAdmin(context.Background(), dto.InviteAdminRequest{Email: "ana@unal.edu.co"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterAdmin_TokenIncorrecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.InviteAdmin(ctx, dto.InviteAdminRequest{Email: "nuevo@unal.edu.co"}))

	_, err := f.uc.RegisterAdmin(ctx, dto.RegisterAdminRequest{
		InviteToken: "deadbeef", // no es el token enviado
		Email:       "nuevo@unal.edu.co",
		Password:    "password-admin",
		Username:    "nuevoadmin",
		FirstName:   "Nuevo",
		LastName:    "Admin",
	})
	assert.ErrorIs(t, err, domain.ErrInviteInvalid)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reset de contraseña
// ──────────────────────────────────────────────────────────────────────────────

func TestForgotPassword_EmailInexistente_NoFiltraCuentas(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "nadie@unal.edu.co"})
	assert.NoError(t, err, "email desconocido responde igual que uno conocido")
	assert.Empty(t, f.mailer.sent, "pero sin enviar correo")
}

func TestResetPassword_FlujoCompleto(t *testing.T) {
	f := newFixture(t, seedStudent(t))
	ctx := context.Background()

	require.NoError(t, f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@unal.edu.co"}))
	require.Len(t, f.mailer.sent, 1)
	token := tokenFromMail(t, f.mailer.sent[0].body)

	// El pre-chequeo del form lo acepta
	check, err := f.uc.VerifyResetToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, check.Valid)

	require.NoError(t, f.uc.ResetPassword(ctx, dto.ResetPasswordRequest{
		Token: token, NewPassword: "nueva-password",
	}))

	// La nueva contraseña sirve para loguearse
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "ana@unal.edu.co", Password: "nueva-password"})
	assert.NoError(t, err)

	// La vieja ya no
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "ana@unal.edu.co", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// El token quedó consumido
	err = f.uc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: token, NewPassword: "otra-mas"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestForgotPassword_SegundaSolicitud_InvalidaLaPrimera(t *testing.T) {
	f := newFixture(t, seedStudent(t))
	ctx := context.Background()

	require.NoError(t, f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@unal.edu.co"}))
	primero := tokenFromMail(t, f.mailer.sent[0].body)

	require.NoError(t, f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@unal.edu.co"}))

	check, err := f.uc.VerifyResetToken(ctx, primero)
	require.NoError(t, err)
	assert.False(t, check.Valid, "pedir un nuevo reset invalida el token anterior")
}

func TestVerifyResetToken_Invalido(t *testing.T) {
	f := newFixture(t)

	check, err := f.uc.VerifyResetToken(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.False(t, check.Valid)

	check, err = f.uc.VerifyResetToken(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, check.Valid)
}
