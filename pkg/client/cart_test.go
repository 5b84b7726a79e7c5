package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimercado/unimercado-api/pkg/client"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend falso del carrito
// ──────────────────────────────────────────────────────────────────────────────

// fakeCart backend en memoria: mantiene líneas por usuario y cuenta requests.
// Los precios se serializan como decimal en texto ("9.99"), igual que el API real.
type fakeCart struct {
	mu       sync.Mutex
	items    map[string][]map[string]any // userID → líneas
	requests int
}

func newFakeCart() *fakeCart {
	return &fakeCart{items: make(map[string][]map[string]any)}
}

func (f *fakeCart) line(id, userID, productID string, qty int, price string) map[string]any {
	return map[string]any{
		"id": id, "userId": userID, "productId": productID, "quantity": qty,
		"product": map[string]any{"id": productID, "name": "producto " + productID, "price": price},
	}
}

func (f *fakeCart) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		items := f.items[r.URL.Query().Get("userId")]
		if items == nil {
			items = []map[string]any{}
		}
		json.NewEncoder(w).Encode(items)
	})

	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			UserID    string `json:"userId"`
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		price := "9.99" // producto 7 del catálogo de prueba
		if in.ProductID != "7" {
			price = "4.50"
		}
		f.items[in.UserID] = append(f.items[in.UserID],
			f.line("linea-"+in.ProductID, in.UserID, in.ProductID, in.Quantity, price))
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("PUT /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Quantity int `json:"quantity"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		id := r.PathValue("id")
		for _, lines := range f.items {
			for _, l := range lines {
				if l["id"] == id {
					l["quantity"] = in.Quantity
				}
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	})

	mux.HandleFunc("DELETE /api/cart/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		delete(f.items, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("DELETE /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		id := r.PathValue("id")
		for uid, lines := range f.items {
			kept := lines[:0]
			for _, l := range lines {
				if l["id"] != id {
					kept = append(kept, l)
				}
			}
			f.items[uid] = kept
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeCart) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// newCartWithUser arma el stack completo del SDK con un usuario ya logueado.
func newCartWithUser(t *testing.T, baseURL, userID string) (*client.CartState, *client.AuthState, *client.QueryCache) {
	t.Helper()
	storage := client.NewMemStorage()
	if userID != "" {
		raw, err := json.Marshal(client.User{ID: userID, Name: "Test", Role: "student"})
		require.NoError(t, err)
		require.NoError(t, storage.Set(client.StorageKeyUser, string(raw)))
		require.NoError(t, storage.Set(client.StorageKeyToken, "tok"))
	}
	api := client.NewAPIClient(baseURL)
	cache := client.NewQueryCache()
	auth := client.NewAuthState(api, cache, storage)
	return client.NewCartState(api, cache, auth), auth, cache
}

// ──────────────────────────────────────────────────────────────────────────────
// Derivados: cartCount y cartTotal
// ──────────────────────────────────────────────────────────────────────────────

// Escenario del contrato: carrito en $0, addToCart(productId=7, quantity=2)
// con precio "9.99" ⇒ tras el refetch, count=2 y total=19.98.
func TestCartState_AddToCart_CuentaYTotalTrasRefetch(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "user-a")
	ctx := context.Background()

	total, err := cart.CartTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "carrito inicial en $0")

	require.NoError(t, cart.AddToCart(ctx, "7", 2))

	count, err := cart.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	total, err = cart.CartTotal(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.98").Equal(total),
		"total debe ser 19.98, fue %s", total)
}

// updateQuantity(id, 0) conserva la línea en cantidad 0: el borrado nunca es
// implícito.
func TestCartState_UpdateQuantityCero_ConservaLaLinea(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "user-a")
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "7", 3))
	require.NoError(t, cart.UpdateQuantity(ctx, "linea-7", 0))

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1, "la línea en cantidad 0 debe seguir existiendo")
	assert.Equal(t, 0, items[0].Quantity)

	count, err := cart.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCartState_RemoveFromCart_EliminaYRefetchea(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "user-a")
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "7", 1))
	require.NoError(t, cart.AddToCart(ctx, "8", 1))
	require.NoError(t, cart.RemoveFromCart(ctx, "linea-7"))

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "8", items[0].ProductID)
}

func TestCartState_ClearCart_VaciaTodo(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "user-a")
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "7", 2))
	require.NoError(t, cart.ClearCart(ctx))

	count, err := cart.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// ──────────────────────────────────────────────────────────────────────────────
// Comportamiento sin usuario: no-ops y la asimetría conservada
// ──────────────────────────────────────────────────────────────────────────────

func TestCartState_SinUsuario_AddYClearSonNoOps(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "")
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "7", 2))
	require.NoError(t, cart.ClearCart(ctx))

	items, err := cart.Items(ctx)
	require.NoError(t, err)
	assert.Nil(t, items, "sin usuario no hay items ni fetch")
	assert.Equal(t, 0, fake.requestCount(), "no debe emitirse ningún request")
}

// UpdateQuantity y RemoveFromCart SÍ emiten el request aunque no haya usuario
// logueado. Es una asimetría del diseño original que se conserva tal cual.
func TestCartState_SinUsuario_UpdateYRemoveEmitenRequest(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "")
	ctx := context.Background()

	require.NoError(t, cart.UpdateQuantity(ctx, "linea-x", 5))
	require.NoError(t, cart.RemoveFromCart(ctx, "linea-x"))

	assert.Equal(t, 2, fake.requestCount(), "ambas operaciones deben llegar al backend")
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento por usuario de la key de cache
// ──────────────────────────────────────────────────────────────────────────────

// La key de cache lleva el user id: tras logout + login de otro usuario, el
// carrito del anterior no puede filtrarse.
func TestCartState_CambioDeUsuario_NoFiltraCarritoAjeno(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)

	// Login del usuario A vía backend falso de auth montado sobre el mismo mux
	// no hace falta: sembramos la sesión directo en storage.
	storage := client.NewMemStorage()
	rawA, _ := json.Marshal(client.User{ID: "user-a", Role: "student"})
	require.NoError(t, storage.Set(client.StorageKeyUser, string(rawA)))
	api := client.NewAPIClient(srv.URL)
	cache := client.NewQueryCache()
	auth := client.NewAuthState(api, cache, storage)
	cart := client.NewCartState(api, cache, auth)
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "7", 2))
	countA, err := cart.CartCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, countA)

	// Logout del A y sesión nueva del B sobre el mismo proceso
	auth.Logout()
	rawB, _ := json.Marshal(client.User{ID: "user-b", Role: "student"})
	require.NoError(t, storage.Set(client.StorageKeyUser, string(rawB)))
	authB := client.NewAuthState(api, cache, storage)
	cartB := client.NewCartState(api, cache, authB)

	countB, err := cartB.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, countB, "el usuario B no debe ver el carrito del A")

	items, err := cartB.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// Tras invalidar, la siguiente lectura refetchea y los derivados nunca quedan
// stale respecto del backend.
func TestCartState_DerivadosRecalculadosTrasInvalidate(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, cache := newCartWithUser(t, srv.URL, "user-a")
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "7", 1))
	count, err := cart.CartCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// Mutación por fuera del estado local (otro tab/dispositivo)
	fake.mu.Lock()
	fake.items["user-a"][0]["quantity"] = 4
	fake.mu.Unlock()

	// Sin invalidación la lectura sigue sirviendo cache
	count, err = cart.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	cache.Invalidate("cart:user:user-a")
	count, err = cart.CartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "tras invalidar, el derivado refleja el backend")
}

// ──────────────────────────────────────────────────────────────────────────────
// Visibilidad del panel
// ──────────────────────────────────────────────────────────────────────────────

func TestCartState_OpenClose_SoloVisibilidad(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "user-a")

	assert.False(t, cart.IsOpen())
	cart.OpenCart()
	assert.True(t, cart.IsOpen())
	cart.CloseCart()
	assert.False(t, cart.IsOpen())
	assert.Equal(t, 0, fake.requestCount(), "abrir/cerrar no tiene efecto de red")
}

// El precio decimal-en-texto se parsea numéricamente, nunca con float.
func TestCartState_PrecioDecimalEnTexto(t *testing.T) {
	fake := newFakeCart()
	srv := fake.server(t)
	cart, _, _ := newCartWithUser(t, srv.URL, "user-a")
	ctx := context.Background()

	require.NoError(t, cart.AddToCart(ctx, "9", 3)) // precio "4.50"

	total, err := cart.CartTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "13.50", total.StringFixed(2))
	assert.False(t, strings.Contains(total.String(), "0000"), "sin artefactos de float")
}
