package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"bizgate/internal/caching"
	"bizgate/internal/config"
	"bizgate/internal/handlers"
	"bizgate/internal/jobs/background"
	"bizgate/internal/middleware"
	"bizgate/internal/models"
	"bizgate/internal/repositories"
	"bizgate/internal/services"
	"bizgate/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Security configuration (TOML file, defaults when absent)
	securityCfg := config.DefaultSecurityConfig()
	if cfgPath := os.Getenv("SECURITY_CONFIG"); cfgPath != "" {
		securityCfg, err = config.LoadSecurityConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load security config: %v", err)
		}
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default Redis address
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDBStr := os.Getenv("REDIS_DB")
	redisDB := 0 // Default DB
	if redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration. Archival is optional; without an endpoint the
	// archival job is simply not registered.
	var archive services.ArchiveStorage
	if minioEndpoint := os.Getenv("MINIO_ENDPOINT"); minioEndpoint != "" {
		minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
		minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
		useSSL := os.Getenv("MINIO_USE_SSL") == "true"

		archive, err = services.NewMinioArchive(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	userRoleRepo := repositories.NewUserRoleRepo(pool)
	rolePermissionRepo := repositories.NewRolePermissionRepo(pool)
	refreshTokenRepo := repositories.NewRefreshTokenRepo(pool)
	oneTimeTokenRepo := repositories.NewOneTimeTokenRepo(pool)
	platformAdminRepo := repositories.NewPlatformAdminRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)
	authEventsRepo := repositories.NewAuthEventsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	tokenSvc := services.NewTokenService(jwtSecret, securityCfg.AccessTTL(), securityCfg.RefreshTTL(), securityCfg.SupportSessionTTL())
	hasher := services.NewBcryptHasher(securityCfg.Passwords.BcryptCost)
	membershipSvc := services.NewMembershipService(membershipRepo, tenantRepo)
	rbacSvc := services.NewRBACService(userRoleRepo, rolePermissionRepo, membershipRepo)
	subscriptionSvc := services.NewSubscriptionService(subscriptionRepo)
	notificationSvc := services.NewNotificationService(redisAddr, redisPassword, redisDB)
	authEventsSvc := services.NewAuthEventsService(authEventsRepo)

	authSvc := services.NewAuthService(
		userRepo,
		platformAdminRepo,
		refreshTokenRepo,
		membershipSvc,
		rbacSvc,
		subscriptionSvc,
		tokenSvc,
		hasher,
		notificationSvc,
		authEventsSvc,
		cacheSvc,
		services.AuthConfig{
			LoginAttemptLimit:  securityCfg.RateLimit.LoginAttemptLimit,
			LoginAttemptWindow: securityCfg.LoginAttemptWindow(),
		},
	)

	accountSvc := services.NewAccountService(
		userRepo,
		membershipRepo,
		oneTimeTokenRepo,
		membershipSvc,
		authSvc,
		tokenSvc,
		hasher,
		notificationSvc,
		authEventsSvc,
		securityCfg.Links.PasswordResetBaseURL,
		securityCfg.Links.EmailVerificationBaseURL,
		securityCfg.Passwords.MinLength,
	)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, accountSvc)
	meHandlers := handlers.NewMeHandlers(userRepo)
	healthHandlers := handlers.NewHealthHandlers(version)

	// Background jobs
	scheduler := background.NewJobScheduler(oneTimeTokenRepo, authEventsRepo, archive)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoint (no auth required)
	e.GET("/health", healthHandlers.Health)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/password-reset/request", authHandlers.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandlers.ConfirmPasswordReset)
	auth.POST("/verify-email/request", authHandlers.RequestEmailVerification)
	auth.POST("/verify-email/confirm", authHandlers.ConfirmEmailVerification)
	auth.POST("/platform/login", authHandlers.PlatformLogin)
	auth.POST("/support/exchange", authHandlers.SupportExchange)

	// Protected routes (require a valid access token)
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(tokenSvc, cacheSvc))

	protected.POST("/auth/logout", authHandlers.Logout)
	protected.POST("/auth/change-password", authHandlers.ChangePassword)
	protected.GET("/auth/me", meHandlers.Me)

	// Business-scope token required beyond this point; support and platform
	// tokens cannot switch tenants through the authenticated path.
	business := protected.Group("")
	business.Use(middleware.RequireScope(models.ScopeBusiness))
	business.POST("/auth/switch-business", authHandlers.SwitchBusiness)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("bizgate auth server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
