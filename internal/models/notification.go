package models

import "time"

const (
	NotificationTypeEmail    = "email"
	NotificationTypeSMS      = "sms"
	NotificationTypeSecurity = "security"
)

// Notification is an outbound message handed to the notification transport.
// Delivery is best-effort; the session core never waits on it.
type Notification struct {
	Type      string            `json:"type"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject,omitempty"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
