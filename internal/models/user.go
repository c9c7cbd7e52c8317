package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"` // Never serialize in JSON
	FirstName         string     `json:"first_name" db:"first_name"`
	LastName          string     `json:"last_name" db:"last_name"`
	Status            string     `json:"status" db:"status"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at" db:"email_verified_at"`
	MustResetPassword bool       `json:"must_reset_password" db:"must_reset_password"`
	LastLoginAt       *time.Time `json:"last_login_at" db:"last_login_at"`
	LastLoginIP       *string    `json:"-" db:"last_login_ip"`
	LastLoginUA       *string    `json:"-" db:"last_login_user_agent"`
	LastLoginDeviceID *string    `json:"-" db:"last_login_device_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
