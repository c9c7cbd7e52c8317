package repositories

import (
	"context"

	"github.com/google/uuid"
)

type RolePermissionRepository interface {
	ListPermissionNames(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID) ([]string, error)
}

type rolePermissionRepo struct {
	db DB
}

func NewRolePermissionRepo(db DB) RolePermissionRepository {
	return &rolePermissionRepo{db: db}
}

func (r *rolePermissionRepo) ListPermissionNames(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.tenant_id = $1 AND rp.role_id = ANY($2)
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, tenantID, roleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
