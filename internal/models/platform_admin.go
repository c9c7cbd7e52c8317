package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformAdmin is an operator of the platform itself. No tenant, no roles;
// authorization comes from the platform scope claim alone.
type PlatformAdmin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
