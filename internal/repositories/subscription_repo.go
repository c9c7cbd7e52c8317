package repositories

import (
	"context"
	"errors"

	"bizgate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
}

type subscriptionRepo struct {
	db DB
}

func NewSubscriptionRepo(db DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, tenant_id, plan_name, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, subscription.ID, subscription.TenantID, subscription.PlanName,
		subscription.Status, subscription.StartDate, subscription.EndDate)
	return err
}

func (r *subscriptionRepo) GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	s := &models.Subscription{}
	query := `
		SELECT id, tenant_id, plan_name, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY start_date DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&s.ID, &s.TenantID, &s.PlanName, &s.Status,
		&s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}
