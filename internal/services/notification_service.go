package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bizgate/internal/models"

	"github.com/redis/go-redis/v9"
)

// NotificationService delivers outbound messages. All sends are best-effort:
// the session flows log failures and carry on.
type NotificationService interface {
	SendEmail(ctx context.Context, recipient, subject, body string) error
	SendSecurityAlert(ctx context.Context, recipient, event string, metadata map[string]string) error
}

type notificationService struct {
	redisClient *redis.Client
}

const notificationQueueKey = "bizgate:notifications"

func NewNotificationService(redisAddr, redisPassword string, redisDB int) NotificationService {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &notificationService{redisClient: redisClient}
}

func (s *notificationService) enqueue(ctx context.Context, notification *models.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := s.redisClient.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

func (s *notificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	// Delivery itself is handled by the mailer worker draining the queue.
	log.Printf("[EMAIL] To=%s, Subject=%s", recipient, subject)
	return s.enqueue(ctx, &models.Notification{
		Type:      models.NotificationTypeEmail,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

func (s *notificationService) SendSecurityAlert(ctx context.Context, recipient, event string, metadata map[string]string) error {
	log.Printf("[SECURITY] To=%s, Event=%s", recipient, event)
	return s.enqueue(ctx, &models.Notification{
		Type:      models.NotificationTypeSecurity,
		Recipient: recipient,
		Subject:   event,
		Body:      fmt.Sprintf("Security event on your account: %s", event),
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
}
