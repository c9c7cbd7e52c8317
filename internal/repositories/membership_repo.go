package repositories

import (
	"context"
	"errors"

	"bizgate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByUserAndTenant(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error)
	ListEligibleByUser(ctx context.Context, userID uuid.UUID) ([]models.BusinessOption, error)
	ActivatePendingForUser(ctx context.Context, userID uuid.UUID) error
}

type membershipRepo struct {
	db DB
}

func NewMembershipRepo(db DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (id, user_id, tenant_id, status, branch_scope, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, tenant_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, membership.ID, membership.UserID, membership.TenantID, membership.Status, membership.BranchScope)
	return err
}

func (r *membershipRepo) GetByUserAndTenant(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	m := &models.Membership{}
	query := `
		SELECT id, user_id, tenant_id, status, branch_scope, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND tenant_id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, tenantID).Scan(&m.ID, &m.UserID, &m.TenantID, &m.Status, &m.BranchScope, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListEligibleByUser returns the tenants a user may sign in to: membership
// active and tenant neither suspended nor deleted.
func (r *membershipRepo) ListEligibleByUser(ctx context.Context, userID uuid.UUID) ([]models.BusinessOption, error) {
	query := `
		SELECT t.id, t.name, t.status
		FROM memberships m
		JOIN tenants t ON t.id = m.tenant_id
		WHERE m.user_id = $1
		  AND m.status = 'active'
		  AND t.status NOT IN ('suspended', 'deleted')
		ORDER BY t.name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.BusinessOption
	for rows.Next() {
		var opt models.BusinessOption
		if err := rows.Scan(&opt.TenantID, &opt.TenantName, &opt.Status); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (r *membershipRepo) ActivatePendingForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE memberships
		SET status = 'active', updated_at = NOW()
		WHERE user_id = $1 AND status = 'pending'
	`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
