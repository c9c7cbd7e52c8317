package services

import (
	"context"
	"time"

	"bizgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id uuid.UUID, ip, userAgent, deviceID string) error {
	args := m.Called(ctx, id, ip, userAgent, deviceID)
	return args.Error(0)
}

type MockPlatformAdminRepository struct {
	mock.Mock
}

func (m *MockPlatformAdminRepository) Create(ctx context.Context, admin *models.PlatformAdmin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockPlatformAdminRepository) GetByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformAdmin), args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string) (*models.RefreshToken, error) {
	args := m.Called(ctx, userID, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID, replacedByHash *string) (bool, error) {
	args := m.Called(ctx, id, replacedByHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeByUserAndHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllForUserExcept(ctx context.Context, userID, keepID uuid.UUID) error {
	args := m.Called(ctx, userID, keepID)
	return args.Error(0)
}

type MockOneTimeTokenRepository struct {
	mock.Mock
}

func (m *MockOneTimeTokenRepository) Create(ctx context.Context, token *models.OneTimeToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockOneTimeTokenRepository) Consume(ctx context.Context, tokenHash, purpose string) (*models.OneTimeToken, error) {
	args := m.Called(ctx, tokenHash, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OneTimeToken), args.Error(1)
}

func (m *MockOneTimeTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetByUserAndTenant(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListEligibleByUser(ctx context.Context, userID uuid.UUID) ([]models.BusinessOption, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusinessOption), args.Error(1)
}

func (m *MockMembershipRepository) ActivatePendingForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockUserRoleRepository struct {
	mock.Mock
}

func (m *MockUserRoleRepository) Create(ctx context.Context, userRole *models.UserRole) error {
	args := m.Called(ctx, userRole)
	return args.Error(0)
}

func (m *MockUserRoleRepository) ListRoleIDs(ctx context.Context, tenantID, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockRolePermissionRepository struct {
	mock.Mock
}

func (m *MockRolePermissionRepository) ListPermissionNames(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tenantID, roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) ResolveEligible(ctx context.Context, userID uuid.UUID) ([]models.BusinessOption, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusinessOption), args.Error(1)
}

func (m *MockMembershipService) SelectBusiness(ctx context.Context, userID uuid.UUID, explicit *uuid.UUID) (uuid.UUID, []models.BusinessOption, error) {
	args := m.Called(ctx, userID, explicit)
	var options []models.BusinessOption
	if args.Get(1) != nil {
		options = args.Get(1).([]models.BusinessOption)
	}
	return args.Get(0).(uuid.UUID), options, args.Error(2)
}

type MockRBACService struct {
	mock.Mock
}

func (m *MockRBACService) Resolve(ctx context.Context, userID, tenantID uuid.UUID) (*AccessSnapshot, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccessSnapshot), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) CurrentStatus(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	args := m.Called(ctx, recipient, subject, body)
	return args.Error(0)
}

func (m *MockNotificationService) SendSecurityAlert(ctx context.Context, recipient, event string, metadata map[string]string) error {
	args := m.Called(ctx, recipient, event, metadata)
	return args.Error(0)
}

type MockAuthEventsService struct {
	mock.Mock
}

func (m *MockAuthEventsService) Record(ctx context.Context, event *models.AuthEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockCacheService) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	args := m.Called(ctx, key, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, req *SignInRequest) (*models.SignInResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignInResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, req *RefreshRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, req *LogoutRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockAuthService) SwitchBusiness(ctx context.Context, req *SwitchBusinessRequest) (*models.SignInResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignInResult), args.Error(1)
}

func (m *MockAuthService) SwitchBusinessForUser(ctx context.Context, userID, tenantID uuid.UUID, deviceID, ip, userAgent string) (*models.TokenResponse, error) {
	args := m.Called(ctx, userID, tenantID, deviceID, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) SignInPlatformAdmin(ctx context.Context, req *PlatformSignInRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) SignInSupportAccess(ctx context.Context, supportToken string) (*models.TokenResponse, error) {
	args := m.Called(ctx, supportToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) EstablishSession(ctx context.Context, user *models.User, tenantID uuid.UUID, deviceID, ip, userAgent string) (*models.TokenResponse, error) {
	args := m.Called(ctx, user, tenantID, deviceID, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) RevokeAllSessionsExcept(ctx context.Context, userID, keepTokenID uuid.UUID) error {
	args := m.Called(ctx, userID, keepTokenID)
	return args.Error(0)
}
