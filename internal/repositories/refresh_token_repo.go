package repositories

import (
	"context"
	"errors"

	"bizgate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RefreshTokenRepository only ever revokes rows, never deletes them: the
// replaced_by_hash chain is what makes a replayed token traceable.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string) (*models.RefreshToken, error)
	// Revoke marks the row revoked and links its successor. Returns false when
	// the row was already revoked, which means a concurrent refresh won the
	// race for this token.
	Revoke(ctx context.Context, id uuid.UUID, replacedByHash *string) (bool, error)
	RevokeByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	RevokeAllForUserExcept(ctx context.Context, userID, keepID uuid.UUID) error
}

type refreshTokenRepo struct {
	db DB
}

func NewRefreshTokenRepo(db DB) RefreshTokenRepository {
	return &refreshTokenRepo{db: db}
}

func (r *refreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, tenant_id, device_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, token.ID, token.UserID, token.TenantID, token.DeviceID, token.TokenHash, token.ExpiresAt)
	return err
}

func (r *refreshTokenRepo) GetByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	query := `
		SELECT id, user_id, tenant_id, device_id, token_hash, expires_at, revoked_at, replaced_by_hash, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2
	`
	err := r.db.QueryRow(ctx, query, userID, tokenHash).Scan(&t.ID, &t.UserID, &t.TenantID, &t.DeviceID,
		&t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.ReplacedByHash, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *refreshTokenRepo) Revoke(ctx context.Context, id uuid.UUID, replacedByHash *string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW(), replaced_by_hash = $2
		WHERE id = $1 AND revoked_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, replacedByHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeByUserAndHash is idempotent: revoking an already-revoked or unknown
// token is not an error.
func (r *refreshTokenRepo) RevokeByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, userID, tokenHash)
	return err
}

func (r *refreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *refreshTokenRepo) RevokeAllForUserExcept(ctx context.Context, userID, keepID uuid.UUID) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND id <> $2 AND revoked_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, userID, keepID)
	return err
}
