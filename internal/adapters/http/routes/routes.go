package routes

import (
	"time"

	"lifelink-api/internal/adapters/http/handlers"
	"lifelink-api/internal/adapters/http/middleware"
	"lifelink-api/internal/adapters/persistence/repositories"
	"lifelink-api/internal/config"
	"lifelink-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. Returns the reminder
// service so main can start and stop its cron jobs with the server lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.ReminderService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	donationRepo := repositories.NewDonationRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	// Shared infrastructure
	feed := services.NewChangeFeed()
	notifyService := services.NewNotificationService()

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	requestService := services.NewRequestService(requestRepo, userRepo, donationRepo, notifyService, feed)
	inventoryService := services.NewInventoryService(inventoryRepo, feed)
	donationService := services.NewDonationService(donationRepo, requestRepo, feed)
	messageService := services.NewMessageService(messageRepo, userRepo, notifyService, feed)
	dashboardService := services.NewDashboardService(db)
	reminderService := services.NewReminderService(donationRepo, requestRepo, userRepo, notifyService, feed)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	requestHandler := handlers.NewRequestHandler(requestService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	donationHandler := handlers.NewDonationHandler(donationService)
	messageHandler := handlers.NewMessageHandler(messageService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, userService)
	eventsHandler := handlers.NewEventsHandler(feed)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Profile routes (any authenticated user)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Get("/", userHandler.GetProfile)
	profileRoutes.Put("/", userHandler.UpdateProfile)
	profileRoutes.Put("/password", middleware.StrictRateLimiter(), userHandler.ChangePassword)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	userRoutes.Get("/", userHandler.List)
	userRoutes.Get("/:id", userHandler.Get)
	userRoutes.Put("/:id/active", userHandler.SetActive)
	userRoutes.Delete("/:id", userHandler.Delete)

	// Donor search (patients and staff)
	donorRoutes := apiV1.Group("/donors")
	donorRoutes.Use(middleware.AuthMiddleware(cfg))
	donorRoutes.Get("/search", middleware.RoleMiddleware("PATIENT", "HOSPITAL", "ADMIN"), userHandler.SearchDonors)

	// Blood request routes
	requestRoutes := apiV1.Group("/requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg))
	requestRoutes.Use(middleware.NoCacheHeaders())
	requestRoutes.Post("/", middleware.PatientOnly(), requestHandler.Create)
	requestRoutes.Get("/", middleware.HospitalOrAdmin(), requestHandler.ListAll)
	requestRoutes.Get("/mine", middleware.PatientOnly(), requestHandler.ListMine)
	requestRoutes.Get("/matching", middleware.DonorOnly(), requestHandler.ListMatching)
	requestRoutes.Get("/:id", requestHandler.Get)
	requestRoutes.Get("/:id/history", requestHandler.History)
	requestRoutes.Post("/:id/accept", middleware.DonorOnly(), requestHandler.Accept)
	requestRoutes.Post("/:id/complete", requestHandler.Complete)
	requestRoutes.Post("/:id/cancel", requestHandler.Cancel)

	// Inventory routes (hospitals manage their own stock)
	inventoryRoutes := apiV1.Group("/inventory")
	inventoryRoutes.Use(middleware.AuthMiddleware(cfg))
	inventoryRoutes.Use(middleware.NoCacheHeaders())
	inventoryRoutes.Get("/", middleware.HospitalOnly(), inventoryHandler.List)
	inventoryRoutes.Post("/adjust", middleware.HospitalOnly(), inventoryHandler.Adjust)
	inventoryRoutes.Put("/set", middleware.HospitalOnly(), inventoryHandler.Set)
	inventoryRoutes.Get("/hospitals/:hospitalID", middleware.HospitalOrAdmin(), inventoryHandler.ListForHospital)
	inventoryRoutes.Get("/:bloodType", middleware.HospitalOnly(), inventoryHandler.Get)

	// Donation routes (donors only)
	donationRoutes := apiV1.Group("/donations")
	donationRoutes.Use(middleware.AuthMiddleware(cfg))
	donationRoutes.Use(middleware.DonorOnly())
	donationRoutes.Post("/", donationHandler.Schedule)
	donationRoutes.Get("/upcoming", donationHandler.ListUpcoming)
	donationRoutes.Post("/:id/complete", donationHandler.Complete)
	donationRoutes.Post("/:id/cancel", donationHandler.Cancel)

	// Message routes (any authenticated user)
	messageRoutes := apiV1.Group("/messages")
	messageRoutes.Use(middleware.AuthMiddleware(cfg))
	messageRoutes.Post("/", messageHandler.Send)
	messageRoutes.Get("/unread-count", messageHandler.UnreadCount)
	messageRoutes.Get("/:partnerID", messageHandler.Conversation)

	// Dashboard routes (role-aware, briefly cacheable)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.PrivateCacheHeaders(30 * time.Second))
	dashboardRoutes.Get("/", dashboardHandler.Get)

	// Change event stream
	apiV1.Get("/events", middleware.AuthMiddleware(cfg), eventsHandler.Stream)

	return reminderService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}
