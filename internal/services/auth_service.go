package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"bizgate/internal/autherrors"
	"bizgate/internal/caching"
	"bizgate/internal/models"
	"bizgate/internal/repositories"

	"github.com/google/uuid"
)

// AuthService is the session orchestrator: it composes credential
// verification, membership resolution, token issuance, and the refresh-token
// rotation ledger into the sign-in, refresh, logout, switch, and privileged
// login flows.
type AuthService interface {
	SignIn(ctx context.Context, req *SignInRequest) (*models.SignInResult, error)
	RefreshToken(ctx context.Context, req *RefreshRequest) (*models.TokenResponse, error)
	Logout(ctx context.Context, req *LogoutRequest) error
	SwitchBusiness(ctx context.Context, req *SwitchBusinessRequest) (*models.SignInResult, error)
	SwitchBusinessForUser(ctx context.Context, userID, tenantID uuid.UUID, deviceID, ip, userAgent string) (*models.TokenResponse, error)
	SignInPlatformAdmin(ctx context.Context, req *PlatformSignInRequest) (*models.TokenResponse, error)
	SignInSupportAccess(ctx context.Context, supportToken string) (*models.TokenResponse, error)

	// EstablishSession issues a token pair for an already-authenticated user.
	// Email verification uses it to auto-start a session after confirm.
	EstablishSession(ctx context.Context, user *models.User, tenantID uuid.UUID, deviceID, ip, userAgent string) (*models.TokenResponse, error)
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
	RevokeAllSessionsExcept(ctx context.Context, userID, keepTokenID uuid.UUID) error
}

type SignInRequest struct {
	Email     string
	Password  string
	TenantID  *uuid.UUID
	DeviceID  string
	IP        string
	UserAgent string
}

type RefreshRequest struct {
	UserID       uuid.UUID
	RefreshToken string
	TenantID     *uuid.UUID
	DeviceID     string
	IP           string
	UserAgent    string
}

type LogoutRequest struct {
	UserID            uuid.UUID
	RefreshToken      string
	TenantID          *uuid.UUID
	AccessTokenID     string
	AccessTokenExpiry time.Time
}

type SwitchBusinessRequest struct {
	Email     string
	Password  string
	TenantID  uuid.UUID
	DeviceID  string
	IP        string
	UserAgent string
}

type PlatformSignInRequest struct {
	Email     string
	Password  string
	DeviceID  string
	IP        string
	UserAgent string
}

// AuthConfig carries the orchestrator's tunables.
type AuthConfig struct {
	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
}

type authService struct {
	userRepo          repositories.UserRepository
	platformAdminRepo repositories.PlatformAdminRepository
	refreshTokenRepo  repositories.RefreshTokenRepository
	membershipSvc     MembershipService
	rbacSvc           RBACService
	subscriptionSvc   SubscriptionService
	tokenSvc          TokenService
	hasher            PasswordHasher
	notificationSvc   NotificationService
	authEventsSvc     AuthEventsService
	cacheSvc          caching.CacheService
	config            AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepository,
	platformAdminRepo repositories.PlatformAdminRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	membershipSvc MembershipService,
	rbacSvc RBACService,
	subscriptionSvc SubscriptionService,
	tokenSvc TokenService,
	hasher PasswordHasher,
	notificationSvc NotificationService,
	authEventsSvc AuthEventsService,
	cacheSvc caching.CacheService,
	config AuthConfig,
) AuthService {
	if config.LoginAttemptLimit <= 0 {
		config.LoginAttemptLimit = 10
	}
	if config.LoginAttemptWindow <= 0 {
		config.LoginAttemptWindow = 15 * time.Minute
	}
	return &authService{
		userRepo:          userRepo,
		platformAdminRepo: platformAdminRepo,
		refreshTokenRepo:  refreshTokenRepo,
		membershipSvc:     membershipSvc,
		rbacSvc:           rbacSvc,
		subscriptionSvc:   subscriptionSvc,
		tokenSvc:          tokenSvc,
		hasher:            hasher,
		notificationSvc:   notificationSvc,
		authEventsSvc:     authEventsSvc,
		cacheSvc:          cacheSvc,
		config:            config,
	}
}

// Fixed permission sets for support-access tokens. Without a scope subset a
// support session gets the broad read-only set; with one it gets the narrower
// union mapped from the named scopes.
var supportReadOnlyPermissions = []string{
	"analytics:read",
	"billing:read",
	"memberships:read",
	"orders:read",
	"reports:read",
	"settings:read",
	"users:read",
}

var supportScopePermissions = map[string][]string{
	"billing": {"billing:read", "invoices:read"},
	"users":   {"users:read", "memberships:read"},
	"reports": {"reports:read", "analytics:read"},
}

func (s *authService) SignIn(ctx context.Context, req *SignInRequest) (*models.SignInResult, error) {
	if req.DeviceID == "" {
		return nil, autherrors.ErrDeviceIDRequired
	}

	rateKey := fmt.Sprintf("login:%s:%s", req.Email, req.IP)
	if limited, err := s.cacheSvc.IsRateLimited(ctx, rateKey, s.config.LoginAttemptLimit); err != nil {
		log.Printf("WARN: rate limit check failed: %v", err)
	} else if limited {
		return nil, autherrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" || !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.noteFailedAttempt(ctx, rateKey)
		s.recordEvent(ctx, &models.AuthEvent{
			Action:  models.ActionSignInFailed,
			Outcome: "failure",
			IP:      strPtr(req.IP),
			Metadata: models.JSONB{
				"email":  req.Email,
				"reason": "invalid_credentials",
			},
		})
		return nil, autherrors.ErrInvalidCredentials
	}

	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	tenantID, options, err := s.membershipSvc.SelectBusiness(ctx, user.ID, req.TenantID)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		// Several eligible businesses and no explicit choice: hand back the
		// candidates instead of credentials.
		return &models.SignInResult{SelectionRequired: true, Businesses: options}, nil
	}

	s.detectUnusualLogin(ctx, user, req.DeviceID, req.IP, req.UserAgent)

	tokens, err := s.EstablishSession(ctx, user, tenantID, req.DeviceID, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, req.IP, req.UserAgent, req.DeviceID); err != nil {
		return nil, fmt.Errorf("failed to record login metadata: %w", err)
	}

	s.recordEvent(ctx, &models.AuthEvent{
		TenantID: &tenantID,
		UserID:   &user.ID,
		Action:   models.ActionSignIn,
		IP:       strPtr(req.IP),
		DeviceID: strPtr(req.DeviceID),
	})

	return &models.SignInResult{Tokens: tokens, User: user}, nil
}

func (s *authService) RefreshToken(ctx context.Context, req *RefreshRequest) (*models.TokenResponse, error) {
	if req.DeviceID == "" {
		return nil, autherrors.ErrDeviceIDRequired
	}

	hash := s.tokenSvc.HashToken(req.RefreshToken)
	row, err := s.refreshTokenRepo.GetByUserAndHash(ctx, req.UserID, hash)
	if err != nil {
		return nil, err
	}
	if row == nil || row.IsExpired(time.Now()) {
		return nil, autherrors.ErrRefreshTokenExpired
	}

	if row.IsRevoked() {
		// Replay of a rotated token: the classic stolen-token signal. All of
		// the user's sessions are revoked before the call fails.
		return nil, s.handleReuse(ctx, req.UserID, row.TenantID, req.IP)
	}

	if row.DeviceID != nil && *row.DeviceID != req.DeviceID {
		// Weaker signal than reuse: could be a benign caller error, so other
		// sessions stay alive.
		return nil, autherrors.ErrDeviceMismatch
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherrors.ErrRefreshTokenExpired
	}
	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	// Claim the token before issuing anything: the conditional update makes
	// sure concurrent refreshes of the same token cannot both succeed.
	newSecret := s.tokenSvc.NewOpaqueToken()
	newHash := s.tokenSvc.HashToken(newSecret)
	claimed, err := s.refreshTokenRepo.Revoke(ctx, row.ID, &newHash)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, s.handleReuse(ctx, req.UserID, row.TenantID, req.IP)
	}

	if row.TenantID == nil {
		// Platform-scope session: no tenant, no membership to resolve.
		return s.issuePlatformPair(ctx, user.ID, user.Email, req.DeviceID, newSecret, newHash)
	}

	explicit := req.TenantID
	if explicit == nil {
		explicit = row.TenantID
	}
	tenantID, _, err := s.membershipSvc.SelectBusiness(ctx, user.ID, explicit)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueBusinessPair(ctx, user, tenantID, req.DeviceID, newSecret, newHash)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.AuthEvent{
		TenantID: &tenantID,
		UserID:   &user.ID,
		Action:   models.ActionRefresh,
		IP:       strPtr(req.IP),
		DeviceID: strPtr(req.DeviceID),
	})

	return tokens, nil
}

// handleReuse performs the unconditional compensating action for token reuse:
// global revocation, security notification, and a failure audit event.
func (s *authService) handleReuse(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID, ip string) error {
	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		log.Printf("ERROR: failed to revoke sessions after reuse detection for user %s: %v", userID, err)
	}

	recipient := ""
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil && user != nil {
		recipient = user.Email
	}
	if recipient != "" {
		if err := s.notificationSvc.SendSecurityAlert(ctx, recipient, "refresh token reuse detected", map[string]string{
			"ip": ip,
		}); err != nil {
			log.Printf("WARN: failed to send reuse notification: %v", err)
		}
	}

	s.recordEvent(ctx, &models.AuthEvent{
		TenantID: tenantID,
		UserID:   &userID,
		Action:   models.ActionRefreshReuse,
		Outcome:  "failure",
		IP:       strPtr(ip),
	})

	return autherrors.ErrRefreshTokenReuseDetected
}

func (s *authService) Logout(ctx context.Context, req *LogoutRequest) error {
	hash := s.tokenSvc.HashToken(req.RefreshToken)
	if err := s.refreshTokenRepo.RevokeByUserAndHash(ctx, req.UserID, hash); err != nil {
		return err
	}

	if req.AccessTokenID != "" {
		ttl := time.Until(req.AccessTokenExpiry)
		if err := s.cacheSvc.BlacklistAccessToken(ctx, req.AccessTokenID, ttl); err != nil {
			log.Printf("WARN: failed to blacklist access token: %v", err)
		}
	}

	if user, err := s.userRepo.GetByID(ctx, req.UserID); err == nil && user != nil {
		s.recordEvent(ctx, &models.AuthEvent{
			TenantID: req.TenantID,
			UserID:   &req.UserID,
			Action:   models.ActionLogout,
		})
	}
	return nil
}

func (s *authService) SwitchBusiness(ctx context.Context, req *SwitchBusinessRequest) (*models.SignInResult, error) {
	tenantID := req.TenantID
	result, err := s.SignIn(ctx, &SignInRequest{
		Email:     req.Email,
		Password:  req.Password,
		TenantID:  &tenantID,
		DeviceID:  req.DeviceID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	if result.Tokens != nil && result.User != nil {
		s.recordEvent(ctx, &models.AuthEvent{
			TenantID: &tenantID,
			UserID:   &result.User.ID,
			Action:   models.ActionSwitchBusiness,
			DeviceID: strPtr(req.DeviceID),
		})
	}
	return result, nil
}

func (s *authService) SwitchBusinessForUser(ctx context.Context, userID, tenantID uuid.UUID, deviceID, ip, userAgent string) (*models.TokenResponse, error) {
	if deviceID == "" {
		return nil, autherrors.ErrDeviceIDRequired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherrors.ErrInvalidCredentials
	}
	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	target := tenantID
	resolved, _, err := s.membershipSvc.SelectBusiness(ctx, userID, &target)
	if err != nil {
		return nil, err
	}

	tokens, err := s.EstablishSession(ctx, user, resolved, deviceID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.AuthEvent{
		TenantID: &resolved,
		UserID:   &userID,
		Action:   models.ActionSwitchBusiness,
		DeviceID: strPtr(deviceID),
	})
	return tokens, nil
}

func (s *authService) SignInPlatformAdmin(ctx context.Context, req *PlatformSignInRequest) (*models.TokenResponse, error) {
	if req.DeviceID == "" {
		return nil, autherrors.ErrDeviceIDRequired
	}

	admin, err := s.platformAdminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !s.hasher.Verify(req.Password, admin.PasswordHash) {
		return nil, autherrors.ErrInvalidCredentials
	}
	if admin.Status != models.UserStatusActive {
		return nil, autherrors.ErrAccountInactive
	}

	secret := s.tokenSvc.NewOpaqueToken()
	hash := s.tokenSvc.HashToken(secret)
	tokens, err := s.issuePlatformPair(ctx, admin.ID, admin.Email, req.DeviceID, secret, hash)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.AuthEvent{
		UserID:   &admin.ID,
		Action:   models.ActionPlatformSignIn,
		IP:       strPtr(req.IP),
		DeviceID: strPtr(req.DeviceID),
	})
	return tokens, nil
}

// SignInSupportAccess exchanges a pre-validated support session for a
// support-scope access token. This narrows a capability; it is not a
// credential check, and no refresh token is issued.
func (s *authService) SignInSupportAccess(ctx context.Context, supportToken string) (*models.TokenResponse, error) {
	session, err := s.tokenSvc.ValidateSupportSession(supportToken)
	if err != nil {
		return nil, autherrors.ErrInvalidCredentials
	}

	permissions := supportPermissionsFor(session.Scopes)
	access, err := s.tokenSvc.IssueAccessToken(&AccessClaims{
		UserID:        session.SupportUserID,
		Scope:         models.ScopeSupport,
		SupportScopes: session.Scopes,
		Permissions:   permissions,
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.AuthEvent{
		Action: models.ActionSupportExchange,
		Metadata: models.JSONB{
			"support_user_id": session.SupportUserID,
			"scopes":          session.Scopes,
		},
	})

	return &models.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenSvc.SupportTTL().Seconds()),
		Scope:       models.ScopeSupport,
		UserID:      session.SupportUserID,
		IssuedAt:    time.Now(),
	}, nil
}

func supportPermissionsFor(scopes []string) []string {
	if len(scopes) == 0 {
		return supportReadOnlyPermissions
	}
	seen := make(map[string]bool)
	var permissions []string
	for _, scope := range scopes {
		for _, name := range supportScopePermissions[scope] {
			if !seen[name] {
				seen[name] = true
				permissions = append(permissions, name)
			}
		}
	}
	return permissions
}

func (s *authService) EstablishSession(ctx context.Context, user *models.User, tenantID uuid.UUID, deviceID, ip, userAgent string) (*models.TokenResponse, error) {
	if deviceID == "" {
		return nil, autherrors.ErrDeviceIDRequired
	}
	secret := s.tokenSvc.NewOpaqueToken()
	hash := s.tokenSvc.HashToken(secret)
	return s.issueBusinessPair(ctx, user, tenantID, deviceID, secret, hash)
}

// issueBusinessPair seals a freshly resolved authorization snapshot into a new
// access token and persists the matching refresh ledger row.
func (s *authService) issueBusinessPair(ctx context.Context, user *models.User, tenantID uuid.UUID, deviceID, refreshSecret, refreshHash string) (*models.TokenResponse, error) {
	snapshot, err := s.rbacSvc.Resolve(ctx, user.ID, tenantID)
	if err != nil {
		return nil, err
	}
	subscriptionStatus, err := s.subscriptionSvc.CurrentStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	roleIDs := make([]string, 0, len(snapshot.RoleIDs))
	for _, id := range snapshot.RoleIDs {
		roleIDs = append(roleIDs, id.String())
	}

	access, err := s.tokenSvc.IssueAccessToken(&AccessClaims{
		UserID:             user.ID.String(),
		Email:              user.Email,
		TenantID:           tenantID.String(),
		DeviceID:           deviceID,
		RoleIDs:            roleIDs,
		Permissions:        snapshot.Permissions,
		BranchScope:        snapshot.BranchScope,
		SubscriptionStatus: subscriptionStatus,
		Scope:              models.ScopeBusiness,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tid := tenantID
	row := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TenantID:  &tid,
		DeviceID:  strPtr(deviceID),
		TokenHash: refreshHash,
		ExpiresAt: now.Add(s.tokenSvc.RefreshTTL()),
	}
	if err := s.refreshTokenRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenSvc.AccessTTL().Seconds()),
		RefreshToken: refreshSecret,
		Scope:        models.ScopeBusiness,
		UserID:       user.ID.String(),
		TenantID:     tenantID.String(),
		IssuedAt:     now,
	}, nil
}

func (s *authService) issuePlatformPair(ctx context.Context, adminID uuid.UUID, email, deviceID, refreshSecret, refreshHash string) (*models.TokenResponse, error) {
	// Platform admins carry no roles or permissions; the scope claim itself
	// is the authorization.
	access, err := s.tokenSvc.IssueAccessToken(&AccessClaims{
		UserID:   adminID.String(),
		Email:    email,
		DeviceID: deviceID,
		Scope:    models.ScopePlatform,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	row := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    adminID,
		DeviceID:  strPtr(deviceID),
		TokenHash: refreshHash,
		ExpiresAt: now.Add(s.tokenSvc.RefreshTTL()),
	}
	if err := s.refreshTokenRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenSvc.AccessTTL().Seconds()),
		RefreshToken: refreshSecret,
		Scope:        models.ScopePlatform,
		UserID:       adminID.String(),
		IssuedAt:     now,
	}, nil
}

func (s *authService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *authService) RevokeAllSessionsExcept(ctx context.Context, userID, keepTokenID uuid.UUID) error {
	return s.refreshTokenRepo.RevokeAllForUserExcept(ctx, userID, keepTokenID)
}

// detectUnusualLogin compares against the single most recent login only. A
// user alternating between two devices will be notified on every other login;
// that tradeoff is accepted for a stateless comparison.
func (s *authService) detectUnusualLogin(ctx context.Context, user *models.User, deviceID, ip, userAgent string) {
	if user.LastLoginDeviceID == nil && user.LastLoginIP == nil {
		return // first login, nothing to compare against
	}
	newDevice := user.LastLoginDeviceID != nil && *user.LastLoginDeviceID != deviceID
	newIP := user.LastLoginIP != nil && *user.LastLoginIP != ip
	if !newDevice && !newIP {
		return
	}

	if err := s.notificationSvc.SendSecurityAlert(ctx, user.Email, "sign-in from a new device or location", map[string]string{
		"ip":         ip,
		"device_id":  deviceID,
		"user_agent": userAgent,
	}); err != nil {
		log.Printf("WARN: failed to send unusual-login notification: %v", err)
	}

	s.recordEvent(ctx, &models.AuthEvent{
		UserID:   &user.ID,
		Action:   models.ActionUnusualLogin,
		IP:       strPtr(ip),
		DeviceID: strPtr(deviceID),
		Metadata: models.JSONB{
			"new_device": newDevice,
			"new_ip":     newIP,
		},
	})
}

func checkUserStatus(user *models.User) error {
	switch user.Status {
	case models.UserStatusActive:
		return nil
	case models.UserStatusPending:
		if user.EmailVerifiedAt == nil {
			return autherrors.ErrAccountNotVerified
		}
		return nil
	default:
		return autherrors.ErrAccountInactive
	}
}

// recordEvent writes an audit event best-effort; failures are logged and
// never surface to the primary operation.
func (s *authService) recordEvent(ctx context.Context, event *models.AuthEvent) {
	if err := s.authEventsSvc.Record(ctx, event); err != nil {
		log.Printf("WARN: failed to record auth event %s: %v", event.Action, err)
	}
}

func (s *authService) noteFailedAttempt(ctx context.Context, rateKey string) {
	if err := s.cacheSvc.IncrementRateLimit(ctx, rateKey, s.config.LoginAttemptWindow); err != nil {
		log.Printf("WARN: failed to increment rate limit: %v", err)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
