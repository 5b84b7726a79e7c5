package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/unimercado/unimercado-api/internal/application/ports"
)

var _ ports.OTPStore = (*OTPStore)(nil)

// NewClient crea el cliente Redis desde la URL de configuración y verifica la conexión.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// OTPStore guarda hashes bcrypt de códigos OTP en Redis con TTL.
// El TTL hace el vencimiento: una key ausente es un código vencido o ya usado.
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore construye el store sobre un cliente Redis existente.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func otpKey(identifier string) string {
	return "otp:" + identifier
}

// Save guarda el hash del código para el identifier (email o teléfono).
// Pisa cualquier código anterior pendiente del mismo identifier.
func (s *OTPStore) Save(ctx context.Context, identifier, codeHash string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpKey(identifier), codeHash, ttl).Err(); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// Verify compara el código contra el hash guardado. Un verify exitoso consume
// el código: se borra la key para garantizar un solo uso.
func (s *OTPStore) Verify(ctx context.Context, identifier, code string) (bool, error) {
	hash, err := s.client.Get(ctx, otpKey(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get otp: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return false, nil
	}
	if err := s.client.Del(ctx, otpKey(identifier)).Err(); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return true, nil
}
