package repositories

import (
	"context"

	"bizgate/internal/models"

	"github.com/google/uuid"
)

type UserRoleRepository interface {
	Create(ctx context.Context, userRole *models.UserRole) error
	ListRoleIDs(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error)
}

type userRoleRepo struct {
	db DB
}

func NewUserRoleRepo(db DB) UserRoleRepository {
	return &userRoleRepo{db: db}
}

func (r *userRoleRepo) Create(ctx context.Context, userRole *models.UserRole) error {
	query := `
		INSERT INTO user_roles (id, tenant_id, user_id, role_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (tenant_id, user_id, role_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userRole.ID, userRole.TenantID, userRole.UserID, userRole.RoleID)
	return err
}

func (r *userRoleRepo) ListRoleIDs(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT role_id FROM user_roles WHERE tenant_id = $1 AND user_id = $2`
	rows, err := r.db.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roleIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		roleIDs = append(roleIDs, id)
	}
	return roleIDs, rows.Err()
}
