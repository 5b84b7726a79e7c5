package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimercado/unimercado-api/pkg/client"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testUserID = "00000000-0000-0000-0000-00000000000a"
	testToken  = "token-de-sesion-123"
)

func testUserJSON(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(client.User{
		ID: testUserID, Name: "Ana Rojas", Username: "anar", Email: "ana@unal.edu.co", Role: "student",
	})
	require.NoError(t, err)
	return string(raw)
}

// authServer backend mínimo de auth: /login responde 200 con {user, token} si
// el password es "correcta", 401 en caso contrario.
func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds client.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "correcta" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"code": "UNAUTHORIZED", "message": "credenciales inválidas"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": testToken,
			"user":  client.User{ID: testUserID, Name: "Ana Rojas", Email: creds.Email, Role: "student"},
		})
	})
	mux.HandleFunc("POST /api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"message": "código enviado"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAuth(t *testing.T, baseURL string, storage client.Storage) (*client.AuthState, *client.APIClient, *client.QueryCache) {
	t.Helper()
	api := client.NewAPIClient(baseURL)
	cache := client.NewQueryCache()
	return client.NewAuthState(api, cache, storage), api, cache
}

// ──────────────────────────────────────────────────────────────────────────────
// Inicialización: restauración de sesión persistida
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthState_RestauraUsuarioPersistido(t *testing.T) {
	storage := client.NewMemStorage()
	require.NoError(t, storage.Set(client.StorageKeyUser, testUserJSON(t)))
	require.NoError(t, storage.Set(client.StorageKeyToken, testToken))

	auth, api, _ := newAuth(t, "http://backend.invalid", storage)

	user := auth.User()
	require.NotNil(t, user, "el usuario persistido debe restaurarse en memoria")
	assert.Equal(t, testUserID, user.ID)
	assert.Equal(t, testToken, api.Token(), "el token persistido debe quedar en el API client")
}

// Entry "user" corrupta: arranque deslogueado y la entry se borra del storage.
func TestAuthState_EntryCorrupta_ArrancaDeslogueadoYLaBorra(t *testing.T) {
	storage := client.NewMemStorage()
	require.NoError(t, storage.Set(client.StorageKeyUser, `{not valid json`))

	auth, _, _ := newAuth(t, "http://backend.invalid", storage)

	assert.Nil(t, auth.User(), "entry corrupta debe dejar al cliente deslogueado")
	_, ok, err := storage.Get(client.StorageKeyUser)
	require.NoError(t, err)
	assert.False(t, ok, "la entry corrupta debe eliminarse del storage")
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthState_LoginExitoso_PersisteUsuarioYTokenJuntos(t *testing.T) {
	srv := authServer(t)
	storage := client.NewMemStorage()
	auth, api, _ := newAuth(t, srv.URL, storage)

	user, err := auth.Login(context.Background(), client.Credentials{
		Email: "ana@unal.edu.co", Password: "correcta",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, testUserID, user.ID)

	// Memoria y storage consistentes tras la escritura
	assert.Equal(t, testUserID, auth.UserID())
	rawUser, ok, err := storage.Get(client.StorageKeyUser)
	require.NoError(t, err)
	require.True(t, ok, "el usuario debe persistirse")
	var stored client.User
	require.NoError(t, json.Unmarshal([]byte(rawUser), &stored))
	assert.Equal(t, testUserID, stored.ID)

	tok, ok, err := storage.Get(client.StorageKeyToken)
	require.NoError(t, err)
	require.True(t, ok, "el token debe persistirse junto con el usuario")
	assert.Equal(t, testToken, tok)
	assert.Equal(t, testToken, api.Token())
}

func TestAuthState_LoginRechazado_NoMutaNada(t *testing.T) {
	srv := authServer(t)
	storage := client.NewMemStorage()
	auth, api, _ := newAuth(t, srv.URL, storage)

	_, err := auth.Login(context.Background(), client.Credentials{
		Email: "ana@unal.edu.co", Password: "equivocada",
	})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)

	assert.Nil(t, auth.User(), "login rechazado no debe dejar usuario en memoria")
	assert.Empty(t, api.Token())
	_, ok, _ := storage.Get(client.StorageKeyUser)
	assert.False(t, ok, "login rechazado no debe escribir el storage")
	_, ok, _ = storage.Get(client.StorageKeyToken)
	assert.False(t, ok)
}

// tokenFailStorage falla al escribir la entry token; el resto delega en memoria.
type tokenFailStorage struct {
	*client.MemStorage
}

func (s *tokenFailStorage) Set(key, value string) error {
	if key == client.StorageKeyToken {
		return errors.New("disco lleno")
	}
	return s.MemStorage.Set(key, value)
}

// Si la escritura del token falla, la entry user no puede quedar huérfana:
// las dos se persisten juntas o ninguna.
func TestAuthState_FalloAlPersistirToken_NoDejaUserHuerfano(t *testing.T) {
	srv := authServer(t)
	storage := &tokenFailStorage{MemStorage: client.NewMemStorage()}
	auth, api, _ := newAuth(t, srv.URL, storage)

	_, err := auth.Login(context.Background(), client.Credentials{
		Email: "ana@unal.edu.co", Password: "correcta",
	})
	require.Error(t, err)

	assert.Nil(t, auth.User(), "la sesión no debe establecerse")
	assert.Empty(t, api.Token())
	_, ok, _ := storage.Get(client.StorageKeyUser)
	assert.False(t, ok, "la entry user debe revertirse si el token no se pudo escribir")
}

// ──────────────────────────────────────────────────────────────────────────────
// Logout
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthState_Logout_LimpiaMemoriaStorageYCache(t *testing.T) {
	srv := authServer(t)
	storage := client.NewMemStorage()
	auth, api, cache := newAuth(t, srv.URL, storage)

	_, err := auth.Login(context.Background(), client.Credentials{Email: "ana@unal.edu.co", Password: "correcta"})
	require.NoError(t, err)

	// Simula datos de servidor cacheados bajo la key del carrito del usuario
	cartCacheKey := "cart:user:" + testUserID
	_, err = cache.Get(context.Background(), cartCacheKey, func(ctx context.Context) (any, error) {
		return []client.CartItem{{ID: "l1", Quantity: 2}}, nil
	})
	require.NoError(t, err)

	auth.Logout()

	assert.Nil(t, auth.User())
	assert.Empty(t, api.Token())
	_, ok, _ := storage.Get(client.StorageKeyUser)
	assert.False(t, ok, "logout debe borrar la entry user")
	_, ok, _ = storage.Get(client.StorageKeyToken)
	assert.False(t, ok, "logout debe borrar la entry token")
	_, ok = cache.Peek(cartCacheKey)
	assert.False(t, ok, "logout debe dejar la cache sin el carrito del usuario anterior")
}

// Logout es idempotente: sin sesión previa tampoco falla ni deja residuos.
func TestAuthState_Logout_SinSesionPrevia(t *testing.T) {
	storage := client.NewMemStorage()
	auth, _, _ := newAuth(t, "http://backend.invalid", storage)

	auth.Logout()
	assert.Nil(t, auth.User())
}

// ──────────────────────────────────────────────────────────────────────────────
// SendOTP e IsLoading
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthState_SendOTP_NoMutaEstadoDeAuth(t *testing.T) {
	srv := authServer(t)
	storage := client.NewMemStorage()
	auth, api, _ := newAuth(t, srv.URL, storage)

	require.NoError(t, auth.SendOTP(context.Background(), "+573001112233"))

	assert.Nil(t, auth.User())
	assert.Empty(t, api.Token())
	_, ok, _ := storage.Get(client.StorageKeyUser)
	assert.False(t, ok)
}

// IsLoading es el OR de los flags por operación: true mientras el request esté
// en vuelo, false al resolverse.
func TestAuthState_IsLoading_DuranteRequestEnVuelo(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusAccepted)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	auth, _, _ := newAuth(t, srv.URL, client.NewMemStorage())
	assert.False(t, auth.IsLoading())

	done := make(chan error, 1)
	go func() { done <- auth.SendOTP(context.Background(), "ana@unal.edu.co") }()

	<-entered
	assert.True(t, auth.IsLoading(), "debe reportar loading con un request en vuelo")

	close(release)
	require.NoError(t, <-done)
	assert.False(t, auth.IsLoading(), "debe volver a false al resolver")
}

// ──────────────────────────────────────────────────────────────────────────────
// Geolocalización best-effort
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthState_CountryCode_DefaultSinLookup(t *testing.T) {
	auth, _, _ := newAuth(t, "http://backend.invalid", client.NewMemStorage())
	assert.Equal(t, client.DefaultCountryCode, auth.CountryCode())
}

func TestAuthState_CountryCode_LookupFallido_MantieneDefault(t *testing.T) {
	api := client.NewAPIClient("http://backend.invalid")
	cache := client.NewQueryCache()
	failing := func(ctx context.Context) (string, error) {
		return "", context.DeadlineExceeded
	}
	auth := client.NewAuthState(api, cache, client.NewMemStorage(), client.WithCountryLookup(failing))

	assert.Equal(t, client.DefaultCountryCode, auth.CountryCode(),
		"un lookup fallido debe dejar el código por defecto en silencio")
}
