package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one row of the rotation ledger. Only the SHA-256 hash of the
// opaque token is stored. Revoked rows are never deleted; they are the
// evidence trail for reuse detection.
type RefreshToken struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	TenantID       *uuid.UUID `json:"tenant_id" db:"tenant_id"` // nil for platform-scope sessions
	DeviceID       *string    `json:"device_id" db:"device_id"`
	TokenHash      string     `json:"-" db:"token_hash"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt      *time.Time `json:"revoked_at" db:"revoked_at"`
	ReplacedByHash *string    `json:"-" db:"replaced_by_hash"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
