package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"bizgate/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the authorization snapshot sealed into a signed access
// token at issuance. It is not re-derived until the next issuance, so
// authorization changes take effect on the next sign-in or refresh.
type AccessClaims struct {
	UserID             string   `json:"user_id"`
	Email              string   `json:"email,omitempty"`
	TenantID           string   `json:"tenant_id,omitempty"`
	DeviceID           string   `json:"device_id,omitempty"`
	RoleIDs            []string `json:"role_ids,omitempty"`
	Permissions        []string `json:"permissions,omitempty"`
	BranchScope        string   `json:"branch_scope,omitempty"`
	SubscriptionStatus string   `json:"subscription_status,omitempty"`
	Scope              string   `json:"scope"` // business | platform | support
	SupportScopes      []string `json:"support_scopes,omitempty"`
	jwt.RegisteredClaims
}

// SupportSessionClaims is the externally issued support session exchanged for
// a narrowed support-scope access token. It is not an access token itself.
type SupportSessionClaims struct {
	SupportUserID string   `json:"support_user_id"`
	Scopes        []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies structured access tokens and generates the
// opaque bearer tokens (refresh, reset, verification) plus their storage hash.
type TokenService interface {
	IssueAccessToken(claims *AccessClaims) (string, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
	IssueSupportSession(supportUserID string, scopes []string, ttl time.Duration) (string, error)
	ValidateSupportSession(token string) (*SupportSessionClaims, error)
	NewOpaqueToken() string
	HashToken(token string) string
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
	SupportTTL() time.Duration
}

type tokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	supportTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL, supportTTL time.Duration) TokenService {
	return &tokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		supportTTL: supportTTL,
	}
}

const (
	tokenIssuer   = "bizgate-auth"
	tokenAudience = "bizgate-api"
)

func (s *tokenService) IssueAccessToken(claims *AccessClaims) (string, error) {
	now := time.Now()

	// Support-scope tokens live for the whole support shift; there is no
	// refresh token to renew them with.
	ttl := s.accessTTL
	if claims.Scope == models.ScopeSupport {
		ttl = s.supportTTL
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}

func (s *tokenService) IssueSupportSession(supportUserID string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SupportSessionClaims{
		SupportUserID: supportUserID,
		Scopes:        scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   supportUserID,
			Audience:  jwt.ClaimStrings{"bizgate-support"},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign support session: %w", err)
	}
	return signed, nil
}

func (s *tokenService) ValidateSupportSession(tokenString string) (*SupportSessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SupportSessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience("bizgate-support"))
	if err != nil {
		return nil, fmt.Errorf("support session validation failed: %w", err)
	}
	if claims, ok := token.Claims.(*SupportSessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid support session claims")
}

// NewOpaqueToken generates a cryptographically random bearer token. Only its
// hash is ever persisted.
func (s *tokenService) NewOpaqueToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

func (s *tokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *tokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *tokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *tokenService) SupportTTL() time.Duration {
	return s.supportTTL
}
