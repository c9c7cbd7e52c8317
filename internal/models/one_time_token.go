package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OneTimeTokenPurposeReset        = "password_reset"
	OneTimeTokenPurposeVerification = "email_verification"
)

// OneTimeToken backs both password-reset and email-verification lifecycles.
// Consumed exactly once: used_at set atomically on confirm.
type OneTimeToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Purpose   string     `json:"purpose" db:"purpose"`
	TokenHash string     `json:"-" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
