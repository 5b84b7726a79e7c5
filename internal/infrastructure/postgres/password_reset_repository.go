package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/unimercado/unimercado-api/internal/domain"
	"github.com/unimercado/unimercado-api/internal/domain/entity"
	"github.com/unimercado/unimercado-api/internal/domain/repository"
)

var _ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)

// PasswordResetRepo implementación del puerto PasswordResetRepository sobre PostgreSQL.
type PasswordResetRepo struct {
	q Querier
}

// NewPasswordResetRepository construye el adaptador de persistencia para tokens de reset.
func NewPasswordResetRepository(q Querier) *PasswordResetRepo {
	return &PasswordResetRepo{q: q}
}

// Create persiste un nuevo token de reset (solo el hash).
func (r *PasswordResetRepo) Create(reset *entity.PasswordReset) error {
	query := `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		reset.ID, reset.UserID, reset.TokenHash, reset.ExpiresAt, reset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

// GetValidByTokenHash devuelve el token vigente (no usado, no vencido) o nil.
func (r *PasswordResetRepo) GetValidByTokenHash(tokenHash string) (*entity.PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()`
	var pr entity.PasswordReset
	err := r.q.QueryRow(context.Background(), query, tokenHash).Scan(
		&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.UsedAt, &pr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get password reset: %w", err)
	}
	return &pr, nil
}

// MarkUsed consume el token (un solo uso).
func (r *PasswordResetRepo) MarkUsed(id string) error {
	query := `UPDATE password_resets SET used_at = now() WHERE id = $1 AND used_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("mark reset used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResetTokenInvalid
	}
	return nil
}

// DeleteByUser invalida todos los tokens pendientes del usuario.
func (r *PasswordResetRepo) DeleteByUser(userID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM password_resets WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete password resets: %w", err)
	}
	return nil
}
