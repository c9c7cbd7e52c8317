package repositories

import (
	"context"
	"errors"
	"time"

	"bizgate/internal/models"

	"github.com/jackc/pgx/v5"
)

type OneTimeTokenRepository interface {
	Create(ctx context.Context, token *models.OneTimeToken) error
	// Consume atomically marks the token used and returns it. Returns nil when
	// no live token matches: unknown hash, wrong purpose, expired, or already
	// used. At most one caller can ever consume a given token.
	Consume(ctx context.Context, tokenHash, purpose string) (*models.OneTimeToken, error)
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type oneTimeTokenRepo struct {
	db DB
}

func NewOneTimeTokenRepo(db DB) OneTimeTokenRepository {
	return &oneTimeTokenRepo{db: db}
}

func (r *oneTimeTokenRepo) Create(ctx context.Context, token *models.OneTimeToken) error {
	query := `
		INSERT INTO one_time_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, token.ID, token.UserID, token.Purpose, token.TokenHash, token.ExpiresAt)
	return err
}

func (r *oneTimeTokenRepo) Consume(ctx context.Context, tokenHash, purpose string) (*models.OneTimeToken, error) {
	t := &models.OneTimeToken{}
	query := `
		UPDATE one_time_tokens
		SET used_at = NOW()
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > NOW()
		RETURNING id, user_id, purpose, token_hash, expires_at, used_at, created_at
	`
	err := r.db.QueryRow(ctx, query, tokenHash, purpose).Scan(&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *oneTimeTokenRepo) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM one_time_tokens WHERE expires_at < $1`
	tag, err := r.db.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
