package routes

import (
	"time"

	"creditoya-web/internal/adapters/http/handlers"
	"creditoya-web/internal/adapters/http/middleware"
	"creditoya-web/internal/config"
	"creditoya-web/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Deps are the wired services the routes need
type Deps struct {
	Gateway      services.Gateway
	Pending      *services.PendingLoanService
	HealthChecks map[string]handlers.Checker
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps Deps, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(deps.Gateway)
	profileService := services.NewProfileService(deps.Gateway)
	loanService := services.NewLoanService(deps.Gateway, deps.Pending)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, deps.HealthChecks)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	profileHandler := handlers.NewProfileHandler(profileService)
	loanHandler := handlers.NewLoanHandler(loanService, deps.Pending)
	pageHandler := handlers.NewPageHandler(profileService, loanService, deps.Pending, cfg)

	// Operational routes
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", middleware.MetricsHandler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	api := app.Group("/api")
	setupAPIRoutes(api, authHandler, profileHandler, loanHandler)

	// Pages
	setupPageRoutes(app, pageHandler)
}

// setupAPIRoutes configures the proxy routes
func setupAPIRoutes(
	router fiber.Router,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	loanHandler *handlers.LoanHandler,
) {
	// Public routes
	router.Post("/auth", middleware.AuthRateLimiter(), authHandler.Login)
	router.Post("/auth/register", middleware.AuthRateLimiter(), authHandler.Register)
	router.Post("/auth/logout", authHandler.Logout)
	router.Get("/banks", middleware.CacheControl(time.Hour), loanHandler.Banks)

	// Session routes
	session := middleware.Session()

	me := router.Group("/auth/me", session)
	me.Get("/", profileHandler.Me)
	me.Put("/", profileHandler.UpdateMe)
	me.Put("/avatar", profileHandler.Avatar)
	me.Post("/docs/papers", profileHandler.Papers)
	me.Post("/docs/selfie", profileHandler.Selfie)

	loan := router.Group("/loan", session)
	loan.Post("/", loanHandler.Create)
	loan.Get("/", loanHandler.Get)
	loan.Get("/pending", loanHandler.Pending)
	loan.Post("/verify-token", middleware.StrictRateLimiter(), loanHandler.VerifyToken)
}

// setupPageRoutes configures the guarded pages
func setupPageRoutes(app *fiber.App, handler *handlers.PageHandler) {
	guard := middleware.NavigationGuard()

	app.Get("/", guard, handler.Landing)
	app.Get("/auth", guard, handler.Auth)
	app.Get("/auth/*", guard, handler.Auth)

	panel := app.Group("/panel", guard, middleware.NoCacheHeaders())
	panel.Get("/", handler.Panel)
	panel.Get("/perfil", handler.Profile)
	panel.Get("/nueva-solicitud", handler.NewRequest)
	panel.Get("/solicitud/:loanId", handler.LoanDetail)
}
