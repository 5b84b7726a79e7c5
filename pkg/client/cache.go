package client

import (
	"context"
	"sync"
)

// FetchFunc trae el valor fresco de una key desde el backend.
type FetchFunc func(ctx context.Context) (any, error)

// QueryCache cache de datos del servidor indexada por key. Una key presente es
// fresca; Invalidate la marca stale borrándola, y el próximo Get vuelve a
// traerla. No hay de-duplicación de fetches concurrentes de la misma key: si
// dos mutaciones se superponen, gana la última en resolver (decisión heredada
// del diseño original, no un descuido).
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewQueryCache construye la cache vacía.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]any)}
}

// Get devuelve el valor cacheado de key, o ejecuta fetch, guarda y devuelve.
// El lock no se sostiene durante el fetch (es una llamada de red).
func (qc *QueryCache) Get(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	qc.mu.Lock()
	if v, ok := qc.entries[key]; ok {
		qc.mu.Unlock()
		return v, nil
	}
	qc.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	qc.mu.Lock()
	qc.entries[key] = v
	qc.mu.Unlock()
	return v, nil
}

// Peek devuelve el valor cacheado sin disparar fetch.
func (qc *QueryCache) Peek(key string) (any, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	v, ok := qc.entries[key]
	return v, ok
}

// Invalidate marca la key como stale: el próximo Get refetchea.
func (qc *QueryCache) Invalidate(key string) {
	qc.mu.Lock()
	delete(qc.entries, key)
	qc.mu.Unlock()
}

// InvalidateAll vacía la cache completa (logout).
func (qc *QueryCache) InvalidateAll() {
	qc.mu.Lock()
	qc.entries = make(map[string]any)
	qc.mu.Unlock()
}
