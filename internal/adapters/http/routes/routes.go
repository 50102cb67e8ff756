package routes

import (
	"time"

	"eloan-must/internal/adapters/http/handlers"
	"eloan-must/internal/adapters/http/middleware"
	"eloan-must/internal/adapters/persistence/cache"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/config"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. rdb may be nil, in
// which case the plafond cache is disabled.
func Setup(app *fiber.App, db *gorm.DB, rdb *goredis.Client, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	plafondRepo := repositories.NewPlafondRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, resetRepo, cfg)
	userService := services.NewUserService(userRepo, roleRepo)
	roleService := services.NewRoleService(roleRepo)
	plafondService := services.NewPlafondService(plafondRepo, cache.NewPlafondCache(rdb, cfg.Redis.TTL))
	notificationService := services.NewNotificationService(notificationRepo)
	loanService := services.NewLoanService(loanRepo, notificationService)
	dashboardService := services.NewDashboardService(loanRepo)
	exportService := services.NewExportService(loanService)

	// Initialize handlers
	h := apiHandlers{
		health:       handlers.NewHealthHandler(),
		auth:         handlers.NewAuthHandler(authService, cfg),
		loan:         handlers.NewLoanHandler(loanService, plafondService, exportService),
		plafond:      handlers.NewPlafondHandler(plafondService),
		user:         handlers.NewUserHandler(userService),
		role:         handlers.NewRoleHandler(roleService),
		notification: handlers.NewNotificationHandler(notificationService),
		dashboard:    handlers.NewDashboardHandler(dashboardService),
	}

	// Health check & root routes
	app.Get("/", h.health.Root)
	app.Get("/health", h.health.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Prometheus metrics
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API v1 group
	setupAPIV1Routes(app.Group("/api/v1"), h, cfg)
}

type apiHandlers struct {
	health       *handlers.HealthHandler
	auth         *handlers.AuthHandler
	loan         *handlers.LoanHandler
	plafond      *handlers.PlafondHandler
	user         *handlers.UserHandler
	role         *handlers.RoleHandler
	notification *handlers.NotificationHandler
	dashboard    *handlers.DashboardHandler
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h apiHandlers, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)

	// API Info
	router.Get("/", h.health.APIInfo)

	// Auth routes
	setupAuthRoutes(router.Group("/auth", middleware.NoCacheHeaders()), h.auth, auth, cfg.Limits)

	// Loans and the three workflow stages
	setupLoanRoutes(router, h.loan, auth)

	// Products
	setupPlafondRoutes(router.Group("/plafonds"), h.plafond, auth)

	// User, role and permission management (SUPER_ADMIN only)
	admin := []fiber.Handler{auth, middleware.SuperAdminOnly()}
	setupUserRoutes(router.Group("/users", admin...), h.user)
	setupRoleRoutes(router.Group("/roles", admin...), router.Group("/permissions", admin...), h.role)

	// Notifications (own inbox)
	setupNotificationRoutes(router.Group("/notifications", auth), h.notification)

	// Dashboard
	router.Get("/dashboard/stats", auth, middleware.AnyAdmin(), middleware.PrivateCache(30*time.Second), h.dashboard.Stats)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler, limits config.RateLimitConfig) {
	authLimit := middleware.AuthRateLimiter(limits.Auth)
	strictLimit := middleware.StrictRateLimiter(limits.Strict)

	// Public routes
	router.Post("/login", authLimit, handler.Login)
	router.Post("/refresh-token", authLimit, handler.RefreshToken)
	router.Post("/forgot-password", strictLimit, handler.ForgotPassword)
	router.Post("/reset-password", strictLimit, handler.ResetPassword)

	// Protected routes
	router.Post("/logout", auth, handler.Logout)
	router.Post("/logout-all", auth, handler.LogoutAll)
	router.Get("/me", auth, handler.Me)
}

// setupLoanRoutes configures loan and workflow routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler, auth fiber.Handler) {
	loans := router.Group("/loans")
	loans.Post("/simulate", handler.Simulate)
	loans.Get("/all", auth, middleware.SuperAdminOnly(), handler.ListAll)
	loans.Get("/export", auth, middleware.SuperAdminOnly(), handler.Export)
	loans.Get("/:id", auth, middleware.AnyAdmin(), handler.Get)
	loans.Get("/:id/history", auth, middleware.AnyAdmin(), handler.History)

	reviews := router.Group("/reviews", auth, middleware.RequireRoles(domain.RoleMarketing))
	reviews.Get("/pending", handler.PendingReviews)
	reviews.Post("/:id", handler.Review)

	approvals := router.Group("/approvals", auth, middleware.RequireRoles(domain.RoleBranchManager))
	approvals.Get("/pending", handler.PendingApprovals)
	approvals.Post("/:id", handler.Decide)

	disbursements := router.Group("/disbursements", auth, middleware.RequireRoles(domain.RoleBackOffice))
	disbursements.Get("/pending", handler.PendingDisbursements)
	disbursements.Get("/", handler.Disbursed)
	disbursements.Post("/:id", handler.Disburse)
}

// setupPlafondRoutes configures product routes
func setupPlafondRoutes(router fiber.Router, handler *handlers.PlafondHandler, auth fiber.Handler) {
	// Public reads
	router.Get("/", middleware.PublicCache(time.Minute), handler.Active)
	router.Get("/active", middleware.PublicCache(time.Minute), handler.Active)
	// detection must follow product toggles immediately
	router.Get("/detect", middleware.NoCacheHeaders(), handler.Detect)

	// SUPER_ADMIN
	admin := router.Group("", auth, middleware.SuperAdminOnly())
	admin.Get("/all", handler.All)
	admin.Get("/:id", handler.Get)
	admin.Post("/", handler.Create)
	admin.Put("/:id", handler.Update)
	admin.Patch("/:id/toggle-active", handler.ToggleActive)
	admin.Delete("/:id", handler.Delete)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Patch("/:id/toggle-active", handler.ToggleActive)
	router.Post("/:id/roles", handler.AssignRoles)
}

// setupRoleRoutes configures role and permission routes
func setupRoleRoutes(roles, permissions fiber.Router, handler *handlers.RoleHandler) {
	roles.Get("/", handler.ListRoles)
	roles.Get("/:id", handler.GetRole)
	roles.Post("/:id/permissions", handler.AssignPermissions)

	permissions.Get("/", handler.ListPermissions)
}

// setupNotificationRoutes configures notification routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Get("/unread", handler.Unread)
	router.Get("/count", handler.Count)
	router.Patch("/mark-all-read", handler.MarkAllRead)
	router.Patch("/:id/read", handler.MarkRead)
	router.Delete("/:id", handler.Delete)
}
