package services

import (
	"context"

	"bizgate/internal/models"
	"bizgate/internal/repositories"

	"github.com/google/uuid"
)

// SubscriptionService exposes the billing state snapshot sealed into access
// tokens. Billing mutations live elsewhere; the session core only reads.
type SubscriptionService interface {
	CurrentStatus(ctx context.Context, tenantID uuid.UUID) (string, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
}

func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{subscriptionRepo: subscriptionRepo}
}

func (s *subscriptionService) CurrentStatus(ctx context.Context, tenantID uuid.UUID) (string, error) {
	subscription, err := s.subscriptionRepo.GetCurrentByTenant(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if subscription == nil {
		return models.SubscriptionStatusNone, nil
	}
	return subscription.Status, nil
}
