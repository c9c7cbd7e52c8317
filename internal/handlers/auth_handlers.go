package handlers

import (
	"net/http"
	"time"

	"bizgate/internal/autherrors"
	"bizgate/internal/common"
	"bizgate/internal/models"
	"bizgate/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthHandlers exposes the session-lifecycle operations over HTTP. Handlers
// stay thin: bind, check required fields, delegate, map failure kinds.
type AuthHandlers struct {
	authSvc    services.AuthService
	accountSvc services.AccountService
}

func NewAuthHandlers(authSvc services.AuthService, accountSvc services.AccountService) *AuthHandlers {
	return &AuthHandlers{
		authSvc:    authSvc,
		accountSvc: accountSvc,
	}
}

// httpStatusForKind maps the stable failure kinds onto HTTP statuses.
func httpStatusForKind(kind string) int {
	switch kind {
	case autherrors.KindInvalidCredentials:
		return http.StatusUnauthorized
	case autherrors.KindAccountNotVerified,
		autherrors.KindAccountInactive,
		autherrors.KindMembershipInactive,
		autherrors.KindTenantInactive,
		autherrors.KindDeviceMismatch:
		return http.StatusForbidden
	case autherrors.KindDeviceIDRequired,
		autherrors.KindPasswordPolicyViolation:
		return http.StatusBadRequest
	case autherrors.KindRefreshTokenExpired,
		autherrors.KindRefreshTokenReuse,
		autherrors.KindOneTimeTokenExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	if kind := autherrors.KindOf(err); kind != "" {
		return c.JSON(httpStatusForKind(kind), common.CreateErrorResponse(kind, err.Error(), nil))
	}
	return common.SendServerError(c, "Internal error")
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type LoginRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	TenantID *string `json:"tenant_id"`
	DeviceID string  `json:"device_id"`
}

// Login handles user sign-in with email and password.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "Email and password are required")
	}

	tenantID, err := parseOptionalUUID(req.TenantID)
	if err != nil {
		return common.SendValidationError(c, "tenant_id", "Invalid tenant id")
	}

	result, err := h.authSvc.SignIn(ctx, &services.SignInRequest{
		Email:     req.Email,
		Password:  req.Password,
		TenantID:  tenantID,
		DeviceID:  req.DeviceID,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	TenantID  string `json:"tenant_id" validate:"required"`
}

// Signup handles user registration into a tenant.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return common.SendClientError(c, "Email, password, first name, and last name are required")
	}
	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return common.SendValidationError(c, "tenant_id", err.Error())
	}

	user, err := h.accountSvc.Signup(ctx, &services.SignupRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TenantID:  tenantID,
	})
	if err != nil {
		if kind := autherrors.KindOf(err); kind != "" {
			return respondError(c, err)
		}
		// Duplicate emails and similar provisioning failures come back as a
		// generic conflict so signup cannot confirm account existence either.
		return c.JSON(http.StatusConflict, common.CreateErrorResponse("SIGNUP_FAILED", "Unable to create account", nil))
	}
	return c.JSON(http.StatusCreated, user)
}

type RefreshRequest struct {
	UserID       string  `json:"user_id" validate:"required"`
	RefreshToken string  `json:"refresh_token" validate:"required"`
	TenantID     *string `json:"tenant_id"`
	DeviceID     string  `json:"device_id"`
}

// Refresh rotates a refresh token and mints a new access token.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "Refresh token is required")
	}
	userID, err := common.ValidateUUID(req.UserID, "user_id")
	if err != nil {
		return common.SendValidationError(c, "user_id", err.Error())
	}
	tenantID, err := parseOptionalUUID(req.TenantID)
	if err != nil {
		return common.SendValidationError(c, "tenant_id", "Invalid tenant id")
	}

	tokens, err := h.authSvc.RefreshToken(ctx, &services.RefreshRequest{
		UserID:       userID,
		RefreshToken: req.RefreshToken,
		TenantID:     tenantID,
		DeviceID:     req.DeviceID,
		IP:           c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

type LogoutRequest struct {
	RefreshToken string  `json:"refresh_token"`
	TenantID     *string `json:"tenant_id"`
}

// Logout revokes the presented refresh token and blacklists the current
// access token. Revoking an already-dead token is not an error.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	tenantID, err := parseOptionalUUID(req.TenantID)
	if err != nil {
		return common.SendValidationError(c, "tenant_id", "Invalid tenant id")
	}
	if tenantID == nil {
		// Attribute the logout to the token's tenant when the body omits one.
		if tid, ok := common.GetTenantIDFromContext(ctx); ok {
			tenantID = &tid
		}
	}

	logoutReq := &services.LogoutRequest{
		UserID:       userID,
		RefreshToken: req.RefreshToken,
		TenantID:     tenantID,
	}
	if tokenID, ok := common.GetAccessTokenIDFromContext(ctx); ok {
		logoutReq.AccessTokenID = tokenID
	}
	if expiry, ok := common.GetTokenExpiryFromContext(ctx); ok {
		logoutReq.AccessTokenExpiry = expiry
	} else {
		logoutReq.AccessTokenExpiry = time.Now()
	}

	if err := h.authSvc.Logout(ctx, logoutReq); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type SwitchBusinessRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id" validate:"required"`
	DeviceID string `json:"device_id"`
}

// SwitchBusiness issues a token pair scoped to a different tenant. With
// credentials it re-authenticates; for an authenticated caller it
// re-authorizes the current user.
func (h *AuthHandlers) SwitchBusiness(c echo.Context) error {
	ctx := c.Request().Context()

	var req SwitchBusinessRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return common.SendValidationError(c, "tenant_id", err.Error())
	}

	if req.Email != "" && req.Password != "" {
		result, err := h.authSvc.SwitchBusiness(ctx, &services.SwitchBusinessRequest{
			Email:     req.Email,
			Password:  req.Password,
			TenantID:  tenantID,
			DeviceID:  req.DeviceID,
			IP:        c.RealIP(),
			UserAgent: c.Request().UserAgent(),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	tokens, err := h.authSvc.SwitchBusinessForUser(ctx, userID, tenantID, req.DeviceID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, &models.SignInResult{Tokens: tokens})
}

type TokenByEmailRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	TenantID *string `json:"tenant_id"`
}

// RequestPasswordReset starts the reset lifecycle. The response shape does
// not reveal whether the email exists.
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req TokenByEmailRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" {
		return common.SendValidationError(c, "email", "Email is required")
	}
	tenantID, err := parseOptionalUUID(req.TenantID)
	if err != nil {
		return common.SendValidationError(c, "tenant_id", "Invalid tenant id")
	}

	result, err := h.accountSvc.RequestPasswordReset(ctx, req.Email, tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type ConfirmPasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ConfirmPasswordReset consumes the reset token and applies the new password.
func (h *AuthHandlers) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req ConfirmPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Token == "" || req.NewPassword == "" {
		return common.SendClientError(c, "Token and new password are required")
	}

	if err := h.accountSvc.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}

// RequestEmailVerification starts (or restarts) the verification lifecycle.
func (h *AuthHandlers) RequestEmailVerification(c echo.Context) error {
	ctx := c.Request().Context()

	var req TokenByEmailRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" {
		return common.SendValidationError(c, "email", "Email is required")
	}
	tenantID, err := parseOptionalUUID(req.TenantID)
	if err != nil {
		return common.SendValidationError(c, "tenant_id", "Invalid tenant id")
	}

	result, err := h.accountSvc.RequestEmailVerification(ctx, req.Email, tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type ConfirmVerificationRequest struct {
	Token    string `json:"token" validate:"required"`
	DeviceID string `json:"device_id"`
}

// ConfirmEmailVerification consumes the verification token, activates the
// account, and auto-establishes a session when a device id is supplied.
func (h *AuthHandlers) ConfirmEmailVerification(c echo.Context) error {
	ctx := c.Request().Context()

	var req ConfirmVerificationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Token == "" {
		return common.SendValidationError(c, "token", "Token is required")
	}

	result, err := h.accountSvc.ConfirmEmailVerification(ctx, &services.ConfirmVerificationRequest{
		Token:     req.Token,
		DeviceID:  req.DeviceID,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	RefreshTokenID  string `json:"refresh_token_id"`
}

// ChangePassword updates the password for the authenticated user and revokes
// every other session.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return common.SendClientError(c, "Current and new passwords are required")
	}
	keepTokenID := uuid.Nil
	if req.RefreshTokenID != "" {
		if id, err := uuid.Parse(req.RefreshTokenID); err == nil {
			keepTokenID = id
		}
	}

	if err := h.accountSvc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword, keepTokenID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed"})
}

type PlatformLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	DeviceID string `json:"device_id"`
}

// PlatformLogin signs a platform admin in. No tenant is involved.
func (h *AuthHandlers) PlatformLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req PlatformLoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "Email and password are required")
	}

	tokens, err := h.authSvc.SignInPlatformAdmin(ctx, &services.PlatformSignInRequest{
		Email:     req.Email,
		Password:  req.Password,
		DeviceID:  req.DeviceID,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

type SupportExchangeRequest struct {
	SupportToken string `json:"support_token" validate:"required"`
}

// SupportExchange swaps a pre-validated support session for a support-scope
// access token.
func (h *AuthHandlers) SupportExchange(c echo.Context) error {
	ctx := c.Request().Context()

	var req SupportExchangeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.SupportToken == "" {
		return common.SendValidationError(c, "support_token", "Support token is required")
	}

	tokens, err := h.authSvc.SignInSupportAccess(ctx, req.SupportToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}
