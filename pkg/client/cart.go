package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/shopspring/decimal"
)

// CartState vista por-usuario de las líneas pendientes de compra. Solo tiene
// sentido con un usuario logueado: la key de cache lleva el user id para que
// un usuario distinto (o el mismo al volver) nunca vea un carrito ajeno.
type CartState struct {
	api   *APIClient
	cache *QueryCache
	auth  *AuthState

	mu   sync.Mutex
	open bool
}

// NewCartState construye el estado del carrito sobre la sesión de auth.
func NewCartState(api *APIClient, cache *QueryCache, auth *AuthState) *CartState {
	return &CartState{api: api, cache: cache, auth: auth}
}

func cartKey(userID string) string {
	return "cart:user:" + userID
}

// Items devuelve las líneas del carrito del usuario logueado, de cache o
// refetcheadas si la key está stale. Sin usuario no se fetchea nada.
func (s *CartState) Items(ctx context.Context) ([]CartItem, error) {
	uid := s.auth.UserID()
	if uid == "" {
		return nil, nil
	}
	v, err := s.cache.Get(ctx, cartKey(uid), func(ctx context.Context) (any, error) {
		var items []CartItem
		path := "/api/cart?userId=" + url.QueryEscape(uid)
		if err := s.api.Do(ctx, http.MethodGet, path, nil, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	items, ok := v.([]CartItem)
	if !ok {
		return nil, fmt.Errorf("cart: tipo inesperado en cache")
	}
	return items, nil
}

// CartCount suma las cantidades actuales; se recalcula en cada lectura.
// Una cantidad ausente cuenta como 0.
func (s *CartState) CartCount(ctx context.Context) (int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count, nil
}

// CartTotal suma precio×cantidad sobre las líneas actuales; se recalcula en
// cada lectura, nunca se cachea aparte.
func (s *CartState) CartTotal(ctx context.Context) (decimal.Decimal, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		total = total.Add(it.Product.Price.Mul(qty))
	}
	return total, nil
}

// AddToCart crea o incrementa la línea del producto para el usuario logueado.
// Sin usuario es un no-op. Cantidad < 1 se normaliza a 1. En éxito invalida la
// key del carrito, forzando refetch en la próxima lectura.
func (s *CartState) AddToCart(ctx context.Context, productID string, quantity int) error {
	uid := s.auth.UserID()
	if uid == "" {
		return nil
	}
	if quantity < 1 {
		quantity = 1
	}
	body := map[string]any{"userId": uid, "productId": productID, "quantity": quantity}
	if err := s.api.Do(ctx, http.MethodPost, "/api/cart", body, nil); err != nil {
		return err
	}
	s.cache.Invalidate(cartKey(uid))
	return nil
}

// UpdateQuantity fija la cantidad absoluta de una línea. Cantidad 0 NO elimina
// la línea; eliminar es siempre RemoveFromCart. A diferencia de AddToCart, el
// request se emite aunque no haya usuario logueado — asimetría heredada del
// diseño original que se conserva a propósito.
func (s *CartState) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	if err := s.api.Do(ctx, http.MethodPut, "/api/cart/"+cartItemID, body, nil); err != nil {
		return err
	}
	s.cache.Invalidate(cartKey(s.auth.UserID()))
	return nil
}

// RemoveFromCart elimina una línea. Igual que UpdateQuantity, emite el request
// aunque no haya usuario (misma asimetría conservada).
func (s *CartState) RemoveFromCart(ctx context.Context, cartItemID string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/api/cart/"+cartItemID, nil, nil); err != nil {
		return err
	}
	s.cache.Invalidate(cartKey(s.auth.UserID()))
	return nil
}

// ClearCart vacía el carrito del usuario logueado; sin usuario es un no-op.
func (s *CartState) ClearCart(ctx context.Context) error {
	uid := s.auth.UserID()
	if uid == "" {
		return nil
	}
	if err := s.api.Do(ctx, http.MethodDelete, "/api/cart/user/"+uid, nil, nil); err != nil {
		return err
	}
	s.cache.Invalidate(cartKey(uid))
	return nil
}

// OpenCart muestra el panel del carrito. Solo visibilidad, sin efecto de red.
func (s *CartState) OpenCart() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

// CloseCart oculta el panel del carrito.
func (s *CartState) CloseCart() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// IsOpen informa si el panel del carrito está visible.
func (s *CartState) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
