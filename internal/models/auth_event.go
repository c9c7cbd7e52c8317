package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents a PostgreSQL JSONB column.
type JSONB map[string]interface{}

// Auth event actions recorded by the session core.
const (
	ActionSignIn            = "auth.sign_in"
	ActionSignInFailed      = "auth.sign_in_failed"
	ActionRefresh           = "auth.refresh"
	ActionRefreshReuse      = "auth.refresh_reuse_detected"
	ActionLogout            = "auth.logout"
	ActionSwitchBusiness    = "auth.switch_business"
	ActionPasswordReset     = "auth.password_reset"
	ActionPasswordChanged   = "auth.password_changed"
	ActionEmailVerified     = "auth.email_verified"
	ActionUnusualLogin      = "auth.unusual_login"
	ActionPlatformSignIn    = "auth.platform_sign_in"
	ActionSupportExchange   = "auth.support_exchange"
)

// AuthEvent is an audit record of a session-lifecycle action. Written
// best-effort; a failed write never fails the triggering operation.
type AuthEvent struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Action    string     `json:"action" db:"action"`
	Outcome   string     `json:"outcome" db:"outcome"` // success | failure
	IP        *string    `json:"ip" db:"ip"`
	UserAgent *string    `json:"user_agent" db:"user_agent"`
	DeviceID  *string    `json:"device_id" db:"device_id"`
	Metadata  JSONB      `json:"metadata" db:"metadata"`
	Archived  bool       `json:"archived" db:"archived"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
