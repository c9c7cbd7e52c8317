package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MembershipStatusPending     = "pending"
	MembershipStatusActive      = "active"
	MembershipStatusDeactivated = "deactivated"
)

// Membership joins a user to a tenant. Its status is independent of both the
// user's global status and the tenant's status; access requires all three.
type Membership struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Status      string    `json:"status" db:"status"`
	BranchScope string    `json:"branch_scope" db:"branch_scope"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// BusinessOption is one selectable tenant when a user belongs to several.
type BusinessOption struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Status     string    `json:"status"`
}
