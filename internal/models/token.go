package models

import "time"

const (
	ScopeBusiness = "business"
	ScopePlatform = "platform"
	ScopeSupport  = "support"
)

// TokenResponse carries a freshly issued access/refresh pair.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope"`
	UserID       string    `json:"user_id"`
	TenantID     string    `json:"tenant_id,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// SignInResult is either a token pair or a business-selection-required
// response listing the candidate tenants.
type SignInResult struct {
	SelectionRequired bool             `json:"selection_required"`
	Businesses        []BusinessOption `json:"businesses,omitempty"`
	Tokens            *TokenResponse   `json:"tokens,omitempty"`
	User              *User            `json:"user,omitempty"`
}
