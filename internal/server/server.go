// Package server contains the HTTP handlers for the marketplace API.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "sublet/docs" // swagger docs
	"sublet/internal/bootstrap"
	"sublet/internal/cache"
	"sublet/internal/config"
	"sublet/internal/featureflags"
	"sublet/internal/middleware"
	"sublet/internal/models"
	"sublet/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// sessionRevoker tracks ended session tokens.
type sessionRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *store.Store
	db             *gorm.DB
	redis          *redis.Client
	sessions       sessionRevoker
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
}

// NewServer creates a server over an initialized runtime.
func NewServer(cfg *config.Config, rt *bootstrap.Runtime) *Server {
	return NewServerWithDeps(cfg, rt.Store, rt.DB, rt.Redis)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// db and redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, st *store.Store, db *gorm.DB, redisClient *redis.Client) *Server {
	return &Server{
		config:         cfg,
		store:          st,
		db:             db,
		redis:          redisClient,
		sessions:       cache.NewSessionRevocations(redisClient),
		promMiddleware: middleware.InitMetrics("sublet-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
}

// NewApp builds the Fiber app with the API error handler.
func (s *Server) NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   "Sublet API",
		BodyLimit: 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, err)
			}
			if code := models.ErrorCode(err); code != "" && code != models.CodeInternal {
				return models.RespondWithAppError(c, err)
			}
			if hub := sentryfiber.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Error reporting sits outermost so it sees panics before recover swallows them.
	if s.config.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "X-Total-Count, X-Trace-ID",
		MaxAge:        86400,
	}))

	if s.config.RateLimitPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimitPerMin,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests, please try again later.",
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Sublet API Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Session
	session := api.Group("/session")
	session.Post("/", middleware.Limit(s.redis, middleware.IdentifyQuota), s.CreateSession)
	session.Get("/", s.SessionRequired(), s.GetSession)
	session.Delete("/", s.SessionRequired(), s.DeleteSession)

	// Users; /me before /:id
	users := api.Group("/users")
	users.Get("/", s.GetAllUsers)
	users.Patch("/me", s.SessionRequired(), s.FlagRequired(featureflags.ProfileEdit), s.UpdateMyProfile)
	users.Get("/:id/reviews", s.GetUserReviews)
	users.Get("/:id/listings", s.GetUserListings)
	users.Get("/:id", s.GetUserProfile)

	// Listings; /recent before /:id
	listings := api.Group("/listings")
	listings.Get("/", s.SearchListings)
	listings.Get("/recent", s.GetRecentListings)
	listings.Post("/", s.SessionRequired(),
		middleware.Limit(s.redis, middleware.CreateListingQuota), s.CreateListing)
	listings.Post("/:id/applications", s.SessionRequired(),
		middleware.Limit(s.redis, middleware.ApplyQuota), s.SubmitApplication)
	listings.Get("/:id/favorite", s.SessionRequired(), s.GetFavoriteStatus)
	listings.Post("/:id/favorite", s.SessionRequired(), s.ToggleFavorite)
	listings.Patch("/:id", s.SessionRequired(), s.UpdateListing)
	listings.Get("/:id", s.GetListing)

	api.Patch("/applications/:id", s.SessionRequired(), s.UpdateApplicationStatus)
	api.Post("/messages", s.SessionRequired(),
		middleware.Limit(s.redis, middleware.MessageQuota), s.SendMessage)
	api.Post("/reviews", s.SessionRequired(),
		middleware.Limit(s.redis, middleware.ReviewQuota), s.CreateReview)

	// Current user's views
	me := api.Group("/me", s.SessionRequired())
	me.Get("/listings", s.GetMyListings)
	me.Get("/listings/counts", s.GetMyListingCounts)
	me.Get("/applications", s.GetMyApplications)
	me.Get("/applications/received", s.GetReceivedApplications)
	me.Get("/favorites", s.GetMyFavorites)
	me.Get("/conversations", s.GetMyConversations)
	me.Post("/conversations/:userId/read", s.FlagRequired(featureflags.ReadReceipts), s.MarkConversationRead)

	// Admin
	admin := api.Group("/admin", s.SessionRequired(), s.AdminRequired())
	admin.Get("/stats", s.GetAdminStats)
	admin.Get("/reports", s.GetAdminReports)
	admin.Get("/users", s.GetAdminUsers)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports the store plus the optional database and Redis.
// Only a configured but unreachable database makes the API unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if s.db != nil {
		dbStatus = "healthy"
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if s.store == nil || dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests. Store persistence and connections belong
// to the runtime and are closed by its owner.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
