package repositories

import (
	"context"
	"errors"

	"bizgate/internal/models"

	"github.com/jackc/pgx/v5"
)

type PlatformAdminRepository interface {
	Create(ctx context.Context, admin *models.PlatformAdmin) error
	GetByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error)
}

type platformAdminRepo struct {
	db DB
}

func NewPlatformAdminRepo(db DB) PlatformAdminRepository {
	return &platformAdminRepo{db: db}
}

func (r *platformAdminRepo) Create(ctx context.Context, admin *models.PlatformAdmin) error {
	query := `
		INSERT INTO platform_admins (id, email, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, admin.ID, admin.Email, admin.PasswordHash, admin.Status)
	return err
}

func (r *platformAdminRepo) GetByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error) {
	admin := &models.PlatformAdmin{}
	query := `
		SELECT id, email, password_hash, status, created_at, updated_at
		FROM platform_admins
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Status, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}
