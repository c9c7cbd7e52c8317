package repositories

import (
	"context"
	"errors"
	"fmt"

	"bizgate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetEmailVerified(ctx context.Context, id uuid.UUID) error
	RecordLogin(ctx context.Context, id uuid.UUID, ip, userAgent, deviceID string) error
}

type userRepo struct {
	db DB
}

func NewUserRepo(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, status, email_verified_at,
		must_reset_password, last_login_at, last_login_ip, last_login_user_agent, last_login_device_id,
		created_at, updated_at`

func (r *userRepo) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Status, &user.EmailVerifiedAt, &user.MustResetPassword, &user.LastLoginAt,
		&user.LastLoginIP, &user.LastLoginUA, &user.LastLoginDeviceID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	var count int
	emailCheckQuery := `SELECT COUNT(*) FROM users WHERE email = $1`
	if err := r.db.QueryRow(ctx, emailCheckQuery, user.Email).Scan(&count); err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("user with email '%s' already exists", user.Email)
	}

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, status, must_reset_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Status, user.MustResetPassword)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, must_reset_password = FALSE, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, passwordHash, id)
	return err
}

// SetEmailVerified stamps email_verified_at once and promotes a pending
// account to active. Repeated calls leave the original timestamp untouched.
func (r *userRepo) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET email_verified_at = COALESCE(email_verified_at, NOW()),
		    status = CASE WHEN status = 'pending' THEN 'active' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *userRepo) RecordLogin(ctx context.Context, id uuid.UUID, ip, userAgent, deviceID string) error {
	query := `
		UPDATE users
		SET last_login_at = NOW(), last_login_ip = $1, last_login_user_agent = $2, last_login_device_id = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, ip, userAgent, deviceID, id)
	return err
}
