package services

import (
	"testing"
	"time"

	"bizgate/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)

	issued, err := svc.IssueAccessToken(&AccessClaims{
		UserID:             "user-1",
		Email:              "owner@acme.test",
		TenantID:           "tenant-1",
		DeviceID:           "device-1",
		Permissions:        []string{"orders:read"},
		BranchScope:        "all",
		SubscriptionStatus: models.SubscriptionStatusActive,
		Scope:              models.ScopeBusiness,
	})
	assert.NoError(t, err)

	claims, err := svc.ValidateAccessToken(issued)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, models.ScopeBusiness, claims.Scope)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)
	other := NewTokenService("other-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)

	issued, err := svc.IssueAccessToken(&AccessClaims{UserID: "user-1", Scope: models.ScopeBusiness})
	assert.NoError(t, err)

	_, err = other.ValidateAccessToken(issued)
	assert.Error(t, err)
}

func TestSupportSessionRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)

	session, err := svc.IssueSupportSession("support-42", []string{"billing", "users"}, time.Hour)
	assert.NoError(t, err)

	claims, err := svc.ValidateSupportSession(session)
	assert.NoError(t, err)
	assert.Equal(t, "support-42", claims.SupportUserID)
	assert.Equal(t, []string{"billing", "users"}, claims.Scopes)
}

func TestValidateSupportSession_RejectsAccessToken(t *testing.T) {
	// An ordinary access token must not pass as a support session; the
	// audience differs.
	svc := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)

	issued, err := svc.IssueAccessToken(&AccessClaims{UserID: "user-1", Scope: models.ScopeBusiness})
	assert.NoError(t, err)

	_, err = svc.ValidateSupportSession(issued)
	assert.Error(t, err)
}

func TestNewOpaqueToken_UniqueAndHashStable(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)

	a := svc.NewOpaqueToken()
	b := svc.NewOpaqueToken()
	assert.NotEqual(t, a, b)
	assert.Equal(t, svc.HashToken(a), svc.HashToken(a))
	assert.NotEqual(t, svc.HashToken(a), svc.HashToken(b))
}

func TestSupportAccessTokenUsesSupportTTL(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute, 720*time.Hour, 8*time.Hour)

	issued, err := svc.IssueAccessToken(&AccessClaims{UserID: "support-42", Scope: models.ScopeSupport})
	assert.NoError(t, err)

	claims, err := svc.ValidateAccessToken(issued)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidatePasswordPolicy(t *testing.T) {
	assert.NoError(t, ValidatePasswordPolicy("Str0ngPassw0rd", 8))
	assert.Error(t, ValidatePasswordPolicy("short1A", 8))
	assert.Error(t, ValidatePasswordPolicy("alllowercase1", 8))
	assert.Error(t, ValidatePasswordPolicy("ALLUPPERCASE1", 8))
	assert.Error(t, ValidatePasswordPolicy("NoDigitsHere", 8))

	// A configured minimum above the floor is honored; below it the floor wins.
	assert.Error(t, ValidatePasswordPolicy("Short1Pass", 12))
	assert.NoError(t, ValidatePasswordPolicy("LongEnough1Pass", 12))
	assert.Error(t, ValidatePasswordPolicy("Ab1", 0))
}
