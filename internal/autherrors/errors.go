package autherrors

import "errors"

// AuthError is a failure with a stable machine-readable kind. Services return
// these instead of raw errors so handlers can map them to HTTP statuses and
// callers can branch on the kind without string matching.
type AuthError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return e.Message
}

const (
	KindInvalidCredentials       = "INVALID_CREDENTIALS"
	KindAccountNotVerified       = "ACCOUNT_NOT_VERIFIED"
	KindAccountInactive          = "ACCOUNT_INACTIVE"
	KindMembershipInactive       = "MEMBERSHIP_INACTIVE"
	KindTenantInactive           = "TENANT_INACTIVE"
	KindDeviceIDRequired         = "DEVICE_ID_REQUIRED"
	KindDeviceMismatch           = "DEVICE_MISMATCH"
	KindRefreshTokenExpired      = "REFRESH_TOKEN_EXPIRED"
	KindRefreshTokenReuse        = "REFRESH_TOKEN_REUSE_DETECTED"
	KindOneTimeTokenExpired      = "ONE_TIME_TOKEN_EXPIRED"
	KindPasswordPolicyViolation  = "PASSWORD_POLICY_VIOLATION"
)

var (
	ErrInvalidCredentials = &AuthError{Kind: KindInvalidCredentials, Message: "invalid email or password"}
	ErrAccountNotVerified = &AuthError{Kind: KindAccountNotVerified, Message: "email address has not been verified"}
	ErrAccountInactive    = &AuthError{Kind: KindAccountInactive, Message: "account is not active"}
	ErrMembershipInactive = &AuthError{Kind: KindMembershipInactive, Message: "membership is not active for this business"}
	// ErrNoActiveBusiness is raised when a user has no eligible business at all.
	ErrNoActiveBusiness          = &AuthError{Kind: KindMembershipInactive, Message: "user is not active for any business"}
	ErrTenantInactive            = &AuthError{Kind: KindTenantInactive, Message: "business is suspended or deleted"}
	ErrDeviceIDRequired          = &AuthError{Kind: KindDeviceIDRequired, Message: "device id is required"}
	ErrDeviceMismatch            = &AuthError{Kind: KindDeviceMismatch, Message: "refresh token is bound to a different device"}
	ErrRefreshTokenExpired       = &AuthError{Kind: KindRefreshTokenExpired, Message: "refresh token is invalid or expired"}
	ErrRefreshTokenReuseDetected = &AuthError{Kind: KindRefreshTokenReuse, Message: "refresh token reuse detected; all sessions revoked"}
	ErrOneTimeTokenExpired       = &AuthError{Kind: KindOneTimeTokenExpired, Message: "token is invalid, expired, or already used"}
	ErrPasswordPolicyViolation   = &AuthError{Kind: KindPasswordPolicyViolation, Message: "password does not meet the policy requirements"}
)

// KindOf returns the stable kind for err, or "" when err carries none.
func KindOf(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
