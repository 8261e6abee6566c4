// Package server contains HTTP and WebSocket handlers for the trade API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/docs" // swagger docs
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/featureflags"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/notifications"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
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

const defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	tokens         *middleware.TokenManager
	userRepo       repository.UserRepository
	postRepo       repository.TradePostRepository
	requestRepo    repository.TradeRequestRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	imageService   *service.TradeImageService
	postService    *service.TradePostService
	requestService *service.TradeRequestService
	authService    *service.AuthService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; notifications and websocket streaming are then off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		tokens:         middleware.NewTokenManager(cfg.JWTSecret),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewTradePostRepository(db),
		requestRepo:    repository.NewTradeRequestRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		imageService:   service.NewTradeImageService(cfg),
	}

	var publisher service.EventPublisher
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		publisher = server.notifier
	}

	server.postService = service.NewTradePostService(server.postRepo, server.imageService, server.featureFlags)
	server.requestService = service.NewTradeRequestService(
		server.requestRepo, server.postRepo, publisher, server.featureFlags, tradeRequestRules(cfg))
	server.authService = service.NewAuthService(server.userRepo, server.tokens, redisClient)

	return server, nil
}

func tradeRequestRules(cfg *config.Config) service.TradeRequestRules {
	rules := service.DefaultTradeRequestRules()
	if cfg.TradeRequestLimit > 0 {
		rules.PendingLimit = cfg.TradeRequestLimit
	}
	if cfg.TradeRequestWindowH > 0 {
		rules.Window = time.Duration(cfg.TradeRequestWindowH) * time.Hour
	}
	return rules
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Trade images are embedded by the storefront from another origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on 429 responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultAllowedOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "EcomTrade Backend Metrics Dashboard",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	app.Static(service.TradeImageMediaPrefix, s.imageService.Dir(), fiber.Static{
		MaxAge: 86400,
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public trade post routes. /user is registered on the same group before
	// /:id so it is never parsed as an ID.
	posts := api.Group("/trade/posts")
	posts.Get("/", s.ListTradePosts)
	posts.Get("/user", s.AuthRequired(), s.ListMyTradePosts)
	posts.Get("/:id", s.GetTradePost)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_trade_post"), s.CreateTradePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeleteTradePost)

	protected := api.Group("", s.AuthRequired())

	// Trade request routes
	requests := protected.Group("/trade/requests")
	requests.Post("/", middleware.RateLimit(
		s.redis, 20, 5*time.Minute, "create_trade_request"), s.CreateTradeRequest)
	requests.Get("/incoming", s.ListIncomingTradeRequests)
	requests.Get("/outgoing", s.ListOutgoingTradeRequests)
	requests.Get("/count", s.GetPendingTradeRequestCount)
	requests.Patch("/:id/accept", s.AcceptTradeRequest)
	requests.Patch("/:id/decline", s.DeclineTradeRequest)
	requests.Patch("/:id/read", s.MarkTradeRequestRead)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)

	protected.Get("/feature-flags", s.GetFeatureFlags)

	// WebSocket ticket issuance and the trade event stream
	protected.Post("/ws/ticket", s.IssueWSTicket)
	api.Get("/ws", s.AuthRequired(), s.WebsocketUpgrade, s.TradeEventsHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired resolves the caller from a single-use websocket ticket or a
// Bearer token and stores the user ID in locals and the user context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSStream := c.Path() == wsStreamPath

		if ticket := c.Query("ticket"); ticket != "" && s.redis != nil {
			userID, err := s.consumeWSTicket(c.UserContext(), ticket)
			if err == nil {
				c.Locals("wsTicket", ticket)
				middleware.WithUser(c, userID)
				return c.Next()
			}
			if isWSStream {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}
		if isWSStream {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("WebSocket ticket required"))
		}

		tokenString, err := middleware.BearerToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.tokens.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		revoked, err := s.authService.IsRevoked(c.UserContext(), claims.JTI)
		if err != nil {
			// Redis outages must not lock every user out.
			middleware.Logger.WarnContext(c.UserContext(), "token revocation check failed", slog.Any("error", err))
		} else if revoked {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("claims", claims)
		middleware.WithUser(c, claims.UserID)
		return c.Next()
	}
}

// NewApp builds the Fiber app with the shared error handler and all routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "EcomTrade API",
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()), slog.Any("error", err))
			return models.RespondWithAppError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires realtime delivery and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start trade event wiring", slog.Any("error", err))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.Any("error", err))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down trade event hub", slog.Any("error", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.Any("error", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.Any("error", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
