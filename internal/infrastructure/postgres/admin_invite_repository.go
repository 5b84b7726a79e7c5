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

var _ repository.AdminInviteRepository = (*AdminInviteRepo)(nil)

// AdminInviteRepo implementación del puerto AdminInviteRepository sobre PostgreSQL.
type AdminInviteRepo struct {
	q Querier
}

// NewAdminInviteRepository construye el adaptador de persistencia para invitaciones.
func NewAdminInviteRepository(q Querier) *AdminInviteRepo {
	return &AdminInviteRepo{q: q}
}

// Create persiste una nueva invitación.
func (r *AdminInviteRepo) Create(invite *entity.AdminInvite) error {
	query := `
		INSERT INTO admin_invites (id, email, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		invite.ID, invite.Email, invite.TokenHash, invite.ExpiresAt, invite.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert admin invite: %w", err)
	}
	return nil
}

// GetValidByEmail devuelve la invitación vigente (no usada, no vencida) más
// reciente para el email, o nil si no hay ninguna.
func (r *AdminInviteRepo) GetValidByEmail(email string) (*entity.AdminInvite, error) {
	query := `
		SELECT id, email, token_hash, expires_at, used_at, created_at
		FROM admin_invites
		WHERE email = $1 AND used_at IS NULL AND expires_at > now()
		ORDER BY created_at DESC LIMIT 1`
	var inv entity.AdminInvite
	err := r.q.QueryRow(context.Background(), query, email).Scan(
		&inv.ID, &inv.Email, &inv.TokenHash, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin invite: %w", err)
	}
	return &inv, nil
}

// MarkUsed consume la invitación (un solo uso).
func (r *AdminInviteRepo) MarkUsed(id string) error {
	query := `UPDATE admin_invites SET used_at = now() WHERE id = $1 AND used_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("mark invite used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInviteInvalid
	}
	return nil
}
