package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Keys del storage durable. Se escriben juntas en el login y se borran juntas
// en el logout.
const (
	StorageKeyUser  = "user"
	StorageKeyToken = "token"
)

// Storage es el storage local durable del cliente (sobrevive reinicios).
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStorage implementa Storage sobre un archivo JSON plano key→value.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage construye el storage en path (p.ej. ~/.unimercado/session.json).
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Get devuelve el valor de key y si existía.
func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set escribe key=value de forma atómica (archivo temporal + rename).
func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.flush(data)
}

// Delete borra la key; borrar una key ausente no es error.
func (s *FileStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.flush(data)
}

func (s *FileStorage) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("leer storage: %w", err)
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		// Archivo corrupto: se descarta completo, igual que una entry corrupta.
		return map[string]string{}, nil
	}
	return data, nil
}

func (s *FileStorage) flush(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("codificar storage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("crear directorio de storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("escribir storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("publicar storage: %w", err)
	}
	return nil
}

// MemStorage implementa Storage en memoria (tests y sesiones efímeras).
type MemStorage struct {
	mu   sync.Mutex
	data map[string]string
}

var _ Storage = (*MemStorage)(nil)

// NewMemStorage construye el storage vacío.
func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string]string)}
}

// Get devuelve el valor de key y si existía.
func (s *MemStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set escribe key=value.
func (s *MemStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete borra la key.
func (s *MemStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
