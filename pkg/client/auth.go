package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// Operaciones con flag de in-flight propio. IsLoading es el OR de todas;
// llamadas concurrentes a la MISMA operación no se de-duplican acá — eso es
// responsabilidad del caller.
const (
	opLogin = iota
	opRegister
	opRegisterAdmin
	opSendOTP
	opCount
)

// DefaultCountryCode se usa cuando la geolocalización falla o no corre.
const DefaultCountryCode = "CO"

// CountryLookupFunc resuelve el país del cliente por IP (best-effort).
type CountryLookupFunc func(ctx context.Context) (string, error)

// AuthState única fuente de verdad de "quién está logueado" y único lugar que
// crea o destruye la sesión. El usuario se mantiene en memoria y en el storage
// durable a la vez: toda escritura toca ambos, y el logout limpia ambos.
type AuthState struct {
	api     *APIClient
	cache   *QueryCache
	storage Storage

	mu          sync.RWMutex
	user        *User
	countryCode string
	pending     [opCount]int
}

// AuthOption configura el AuthState al construirlo.
type AuthOption func(*AuthState)

// WithCountryLookup habilita la geolocalización one-shot al construir. Solo
// alimenta el formateo de teléfonos; un fallo deja el default silenciosamente.
func WithCountryLookup(lookup CountryLookupFunc) AuthOption {
	return func(s *AuthState) {
		if lookup == nil {
			return
		}
		go func() {
			code, err := lookup(context.Background())
			if err != nil || code == "" {
				return
			}
			s.mu.Lock()
			s.countryCode = code
			s.mu.Unlock()
		}()
	}
}

// NewAuthState construye el estado de auth y restaura la sesión persistida.
// Una entry "user" corrupta se descarta y se borra del storage; el cliente
// arranca deslogueado. El usuario restaurado es optimista: no se revalida
// contra el backend hasta que un request autenticado falle.
func NewAuthState(api *APIClient, cache *QueryCache, storage Storage, opts ...AuthOption) *AuthState {
	s := &AuthState{
		api:         api,
		cache:       cache,
		storage:     storage,
		countryCode: DefaultCountryCode,
	}

	if raw, ok, err := storage.Get(StorageKeyUser); err == nil && ok {
		var u User
		if json.Unmarshal([]byte(raw), &u) == nil && u.ID != "" {
			s.user = &u
		} else {
			_ = storage.Delete(StorageKeyUser)
		}
	}
	if tok, ok, err := storage.Get(StorageKeyToken); err == nil && ok {
		api.SetToken(tok)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// User devuelve una copia del usuario logueado, o nil.
func (s *AuthState) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID devuelve el ID del usuario logueado, o "".
func (s *AuthState) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// CountryCode devuelve el país detectado (o el default).
func (s *AuthState) CountryCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countryCode
}

// IsLoading es true mientras haya algún request de auth en vuelo (el logout no
// cuenta: es local). OR lógico sobre los contadores de cada operación.
func (s *AuthState) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.pending {
		if n > 0 {
			return true
		}
	}
	return false
}

func (s *AuthState) track(op int) func() {
	s.mu.Lock()
	s.pending[op]++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.pending[op]--
		s.mu.Unlock()
	}
}

// Login autentica con una de las combinaciones de Credentials. En éxito
// reemplaza el usuario en memoria y persiste usuario y token juntos; en
// fallo propaga el error sin mutar nada.
func (s *AuthState) Login(ctx context.Context, creds Credentials) (*User, error) {
	defer s.track(opLogin)()
	var out loginResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/auth/login", creds, &out); err != nil {
		return nil, err
	}
	if err := s.establishSession(out); err != nil {
		return nil, err
	}
	u := out.User
	return &u, nil
}

// Register registra un estudiante; mismo contrato de éxito/fallo que Login.
func (s *AuthState) Register(ctx context.Context, data RegisterData) (*User, error) {
	defer s.track(opRegister)()
	var out loginResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/auth/register", data, &out); err != nil {
		return nil, err
	}
	if err := s.establishSession(out); err != nil {
		return nil, err
	}
	u := out.User
	return &u, nil
}

// RegisterAdmin crea una cuenta admin con invitación; mismo contrato que Login.
func (s *AuthState) RegisterAdmin(ctx context.Context, data AdminRegisterData) (*User, error) {
	defer s.track(opRegisterAdmin)()
	var out loginResponse
	if err := s.api.Do(ctx, http.MethodPost, "/api/auth/admin/register", data, &out); err != nil {
		return nil, err
	}
	if err := s.establishSession(out); err != nil {
		return nil, err
	}
	u := out.User
	return &u, nil
}

// SendOTP dispara el envío de un código al email o teléfono. No muta el
// estado de auth; el fallo solo se devuelve al caller.
func (s *AuthState) SendOTP(ctx context.Context, identifier string) error {
	defer s.track(opSendOTP)()
	body := map[string]string{"identifier": identifier}
	return s.api.Do(ctx, http.MethodPost, "/api/auth/send-otp", body, nil)
}

// Logout limpia el usuario en memoria, borra las dos entries del storage y
// invalida la cache completa: todo dato de servidor queda stale.
func (s *AuthState) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	_ = s.storage.Delete(StorageKeyUser)
	_ = s.storage.Delete(StorageKeyToken)
	s.api.SetToken("")
	s.cache.InvalidateAll()
}

// establishSession persiste usuario+token juntos y actualiza la memoria.
// El storage se escribe primero: si falla, la sesión no se establece.
func (s *AuthState) establishSession(resp loginResponse) error {
	raw, err := json.Marshal(resp.User)
	if err != nil {
		return err
	}
	if err := s.storage.Set(StorageKeyUser, string(raw)); err != nil {
		return err
	}
	if err := s.storage.Set(StorageKeyToken, resp.Token); err != nil {
		// Las dos entries van juntas: no dejar un user persistido sin token.
		_ = s.storage.Delete(StorageKeyUser)
		return err
	}
	s.api.SetToken(resp.Token)
	s.mu.Lock()
	u := resp.User
	s.user = &u
	s.mu.Unlock()
	return nil
}
