package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"bizgate/internal/autherrors"
	"bizgate/internal/models"
	"bizgate/internal/repositories"

	"github.com/google/uuid"
)

// AccountService owns the one-time token lifecycles (password reset, email
// verification) and account provisioning. Both lifecycles are the same state
// machine: request creates a hashed row with a TTL, confirm consumes it
// exactly once and applies the side effect.
type AccountService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string, keepTokenID uuid.UUID) error

	RequestPasswordReset(ctx context.Context, email string, tenantID *uuid.UUID) (*RequestTokenResult, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	RequestEmailVerification(ctx context.Context, email string, tenantID *uuid.UUID) (*RequestTokenResult, error)
	ConfirmEmailVerification(ctx context.Context, req *ConfirmVerificationRequest) (*VerificationResult, error)
}

type SignupRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	TenantID  uuid.UUID
}

// RequestTokenResult is success-shaped even for unknown emails, so request
// endpoints cannot be used to enumerate accounts. Only when the user exists
// and belongs to several businesses does it carry the selection list.
type RequestTokenResult struct {
	SelectionRequired bool                    `json:"selection_required"`
	Businesses        []models.BusinessOption `json:"businesses,omitempty"`
}

type ConfirmVerificationRequest struct {
	Token     string
	DeviceID  string
	IP        string
	UserAgent string
}

// VerificationResult reports a confirmed verification. Tokens are present
// only when a device id was supplied and exactly one business was eligible.
type VerificationResult struct {
	Verified          bool                    `json:"verified"`
	SelectionRequired bool                    `json:"selection_required"`
	Businesses        []models.BusinessOption `json:"businesses,omitempty"`
	Tokens            *models.TokenResponse   `json:"tokens,omitempty"`
}

// TTLs for the two one-time token purposes.
const (
	passwordResetTTL     = 2 * time.Hour
	emailVerificationTTL = 24 * time.Hour
)

type accountService struct {
	userRepo          repositories.UserRepository
	membershipRepo    repositories.MembershipRepository
	oneTimeTokenRepo  repositories.OneTimeTokenRepository
	membershipSvc     MembershipService
	authSvc           AuthService
	tokenSvc          TokenService
	hasher            PasswordHasher
	notificationSvc   NotificationService
	authEventsSvc     AuthEventsService
	resetBaseURL      string
	verifyBaseURL     string
	passwordMinLength int
}

func NewAccountService(
	userRepo repositories.UserRepository,
	membershipRepo repositories.MembershipRepository,
	oneTimeTokenRepo repositories.OneTimeTokenRepository,
	membershipSvc MembershipService,
	authSvc AuthService,
	tokenSvc TokenService,
	hasher PasswordHasher,
	notificationSvc NotificationService,
	authEventsSvc AuthEventsService,
	resetBaseURL, verifyBaseURL string,
	passwordMinLength int,
) AccountService {
	return &accountService{
		userRepo:          userRepo,
		membershipRepo:    membershipRepo,
		oneTimeTokenRepo:  oneTimeTokenRepo,
		membershipSvc:     membershipSvc,
		authSvc:           authSvc,
		tokenSvc:          tokenSvc,
		hasher:            hasher,
		notificationSvc:   notificationSvc,
		authEventsSvc:     authEventsSvc,
		resetBaseURL:      resetBaseURL,
		verifyBaseURL:     verifyBaseURL,
		passwordMinLength: passwordMinLength,
	}
}

func (s *accountService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	if err := ValidatePasswordPolicy(req.Password, s.passwordMinLength); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Derive(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive password hash: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Status:       models.UserStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		ID:       uuid.New(),
		UserID:   user.ID,
		TenantID: req.TenantID,
		Status:   models.MembershipStatusPending,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}

	if err := s.issueOneTimeToken(ctx, user, models.OneTimeTokenPurposeVerification, emailVerificationTTL); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *accountService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string, keepTokenID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return autherrors.ErrInvalidCredentials
	}
	if err := ValidatePasswordPolicy(newPassword, s.passwordMinLength); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Derive(newPassword)
	if err != nil {
		return fmt.Errorf("failed to derive password hash: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	// Other sessions die; the one performing the change stays.
	if err := s.authSvc.RevokeAllSessionsExcept(ctx, userID, keepTokenID); err != nil {
		log.Printf("WARN: failed to revoke other sessions after password change: %v", err)
	}

	s.recordEvent(ctx, &models.AuthEvent{
		UserID: &userID,
		Action: models.ActionPasswordChanged,
	})
	return nil
}

func (s *accountService) RequestPasswordReset(ctx context.Context, email string, tenantID *uuid.UUID) (*RequestTokenResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Unknown email: same response shape, no side effect.
		return &RequestTokenResult{}, nil
	}

	_, options, err := s.membershipSvc.SelectBusiness(ctx, user.ID, tenantID)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		return &RequestTokenResult{SelectionRequired: true, Businesses: options}, nil
	}

	if err := s.issueOneTimeToken(ctx, user, models.OneTimeTokenPurposeReset, passwordResetTTL); err != nil {
		return nil, err
	}
	return &RequestTokenResult{}, nil
}

func (s *accountService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := ValidatePasswordPolicy(newPassword, s.passwordMinLength); err != nil {
		return err
	}

	hash := s.tokenSvc.HashToken(token)
	consumed, err := s.oneTimeTokenRepo.Consume(ctx, hash, models.OneTimeTokenPurposeReset)
	if err != nil {
		return err
	}
	if consumed == nil {
		return autherrors.ErrOneTimeTokenExpired
	}

	passwordHash, err := s.hasher.Derive(newPassword)
	if err != nil {
		return fmt.Errorf("failed to derive password hash: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, consumed.UserID, passwordHash); err != nil {
		return err
	}

	// A reset usually means the old credential leaked; every session goes.
	if err := s.authSvc.RevokeAllSessions(ctx, consumed.UserID); err != nil {
		log.Printf("WARN: failed to revoke sessions after password reset: %v", err)
	}

	s.recordEvent(ctx, &models.AuthEvent{
		UserID: &consumed.UserID,
		Action: models.ActionPasswordReset,
	})
	return nil
}

func (s *accountService) RequestEmailVerification(ctx context.Context, email string, tenantID *uuid.UUID) (*RequestTokenResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.EmailVerifiedAt != nil {
		return &RequestTokenResult{}, nil
	}

	// Pending accounts have no active membership yet, so the selection branch
	// only applies to users re-verifying an address on a live account.
	if user.Status == models.UserStatusActive {
		_, options, err := s.membershipSvc.SelectBusiness(ctx, user.ID, tenantID)
		if err != nil {
			return nil, err
		}
		if len(options) > 0 {
			return &RequestTokenResult{SelectionRequired: true, Businesses: options}, nil
		}
	}

	if err := s.issueOneTimeToken(ctx, user, models.OneTimeTokenPurposeVerification, emailVerificationTTL); err != nil {
		return nil, err
	}
	return &RequestTokenResult{}, nil
}

func (s *accountService) ConfirmEmailVerification(ctx context.Context, req *ConfirmVerificationRequest) (*VerificationResult, error) {
	hash := s.tokenSvc.HashToken(req.Token)
	consumed, err := s.oneTimeTokenRepo.Consume(ctx, hash, models.OneTimeTokenPurposeVerification)
	if err != nil {
		return nil, err
	}
	if consumed == nil {
		return nil, autherrors.ErrOneTimeTokenExpired
	}

	if err := s.userRepo.SetEmailVerified(ctx, consumed.UserID); err != nil {
		return nil, err
	}
	if err := s.membershipRepo.ActivatePendingForUser(ctx, consumed.UserID); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.AuthEvent{
		UserID: &consumed.UserID,
		Action: models.ActionEmailVerified,
	})

	if req.DeviceID == "" {
		// No device to bind a session to: acknowledge the verification only.
		return &VerificationResult{Verified: true}, nil
	}

	user, err := s.userRepo.GetByID(ctx, consumed.UserID)
	if err != nil {
		return nil, err
	}
	options, err := s.membershipSvc.ResolveEligible(ctx, consumed.UserID)
	if err != nil {
		return nil, err
	}
	switch len(options) {
	case 0:
		return &VerificationResult{Verified: true}, nil
	case 1:
		tokens, err := s.authSvc.EstablishSession(ctx, user, options[0].TenantID, req.DeviceID, req.IP, req.UserAgent)
		if err != nil {
			return nil, err
		}
		return &VerificationResult{Verified: true, Tokens: tokens}, nil
	default:
		return &VerificationResult{Verified: true, SelectionRequired: true, Businesses: options}, nil
	}
}

// issueOneTimeToken creates the hashed row and sends the plaintext out of
// band. The email send is best-effort.
func (s *accountService) issueOneTimeToken(ctx context.Context, user *models.User, purpose string, ttl time.Duration) error {
	token := s.tokenSvc.NewOpaqueToken()
	row := &models.OneTimeToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Purpose:   purpose,
		TokenHash: s.tokenSvc.HashToken(token),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.oneTimeTokenRepo.Create(ctx, row); err != nil {
		return err
	}

	var subject, link string
	switch purpose {
	case models.OneTimeTokenPurposeReset:
		subject = "Reset your password"
		link = fmt.Sprintf("%s?token=%s", s.resetBaseURL, token)
	default:
		subject = "Verify your email address"
		link = fmt.Sprintf("%s?token=%s", s.verifyBaseURL, token)
	}
	if err := s.notificationSvc.SendEmail(ctx, user.Email, subject, link); err != nil {
		log.Printf("WARN: failed to send %s email: %v", purpose, err)
	}
	return nil
}

func (s *accountService) recordEvent(ctx context.Context, event *models.AuthEvent) {
	if err := s.authEventsSvc.Record(ctx, event); err != nil {
		log.Printf("WARN: failed to record auth event %s: %v", event.Action, err)
	}
}
