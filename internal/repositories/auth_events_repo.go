package repositories

import (
	"context"
	"encoding/json"

	"bizgate/internal/models"

	"github.com/google/uuid"
)

type AuthEventsRepository interface {
	Create(ctx context.Context, event *models.AuthEvent) error
	ListUnarchivedBefore(ctx context.Context, cutoff string, limit int) ([]*models.AuthEvent, error)
	MarkArchived(ctx context.Context, ids []uuid.UUID) error
}

type authEventsRepo struct {
	db DB
}

func NewAuthEventsRepo(db DB) AuthEventsRepository {
	return &authEventsRepo{db: db}
}

func (r *authEventsRepo) Create(ctx context.Context, event *models.AuthEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO auth_events (id, tenant_id, user_id, action, outcome, ip, user_agent, device_id, metadata, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NOW())
	`
	_, err = r.db.Exec(ctx, query, event.ID, event.TenantID, event.UserID, event.Action, event.Outcome,
		event.IP, event.UserAgent, event.DeviceID, metadata)
	return err
}

// ListUnarchivedBefore returns events older than the cutoff (an interval such
// as '90 days') that have not yet been shipped to archive storage.
func (r *authEventsRepo) ListUnarchivedBefore(ctx context.Context, cutoff string, limit int) ([]*models.AuthEvent, error) {
	query := `
		SELECT id, tenant_id, user_id, action, outcome, ip, user_agent, device_id, metadata, archived, created_at
		FROM auth_events
		WHERE archived = FALSE AND created_at < NOW() - $1::interval
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.AuthEvent
	for rows.Next() {
		event := &models.AuthEvent{}
		var metadata []byte
		if err := rows.Scan(&event.ID, &event.TenantID, &event.UserID, &event.Action, &event.Outcome,
			&event.IP, &event.UserAgent, &event.DeviceID, &metadata, &event.Archived, &event.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *authEventsRepo) MarkArchived(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE auth_events SET archived = TRUE WHERE id = ANY($1)`
	_, err := r.db.Exec(ctx, query, ids)
	return err
}
