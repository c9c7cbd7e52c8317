package middleware

import (
	"context"
	"net/http"
	"strings"

	"bizgate/internal/caching"
	"bizgate/internal/common"
	"bizgate/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates bearer access tokens, rejects blacklisted token
// ids, and places the token's identity snapshot in the request context.
func JWTMiddleware(tokenSvc services.TokenService, cacheSvc caching.CacheService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, err := tokenSvc.ValidateAccessToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			if blacklisted, err := cacheSvc.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID); err == nil && blacklisted {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token revoked")
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user id in token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.ScopeKey, claims.Scope)
			ctx = context.WithValue(ctx, common.AccessTokenIDKey, claims.ID)
			if claims.ExpiresAt != nil {
				ctx = context.WithValue(ctx, common.TokenExpiryKey, claims.ExpiresAt.Time)
			}
			if claims.TenantID != "" {
				if tenantID, err := uuid.Parse(claims.TenantID); err == nil {
					ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
				}
			}
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireScope rejects requests whose token scope is not in the allowed set.
func RequireScope(scopes ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(scopes))
	for _, scope := range scopes {
		allowed[scope] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, ok := common.GetScopeFromContext(c.Request().Context())
			if !ok || !allowed[scope] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient scope")
			}
			return next(c)
		}
	}
}
