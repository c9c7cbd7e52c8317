package services

import (
	"context"
	"errors"
	"time"

	"bizgate/internal/models"
	"bizgate/internal/repositories"

	"github.com/google/uuid"
)

// AuthEventsService records session-lifecycle audit events.
type AuthEventsService interface {
	Record(ctx context.Context, event *models.AuthEvent) error
}

type authEventsService struct {
	authEventsRepo repositories.AuthEventsRepository
}

func NewAuthEventsService(authEventsRepo repositories.AuthEventsRepository) AuthEventsService {
	return &authEventsService{authEventsRepo: authEventsRepo}
}

func (s *authEventsService) Record(ctx context.Context, event *models.AuthEvent) error {
	if event.Action == "" {
		return errors.New("action is required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Outcome == "" {
		event.Outcome = "success"
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return s.authEventsRepo.Create(ctx, event)
}
