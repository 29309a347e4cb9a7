// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"forgeline/internal/cache"
	"forgeline/internal/config"
	"forgeline/internal/content"
	"forgeline/internal/database"
	"forgeline/internal/i18n"
	"forgeline/internal/mailer"
	"forgeline/internal/middleware"
	"forgeline/internal/models"
	"forgeline/internal/notifications"
	"forgeline/internal/observability"
	"forgeline/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// fiberprometheus registers its collectors with the default prometheus
// registry; creating it more than once per process panics.
var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

func promMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New("forgeline-api")
	})
	return promInst
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	library        *content.Library
	translator     *i18n.Translator
	submissionRepo repository.SubmissionRepository
	notifier       *notifications.Notifier
	mailer         mailer.Mailer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config, library *content.Library, translator *i18n.Translator) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient, library, translator)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	library *content.Library,
	translator *i18n.Translator,
) (*Server, error) {
	prom := promMiddleware()

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		library:        library,
		translator:     translator,
		submissionRepo: repository.NewSubmissionRepository(db),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	if cfg.SMTPHost != "" {
		server.mailer = mailer.NewSMTPMailer(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
			cfg.MailFrom, cfg.MailTo)
	} else {
		server.mailer = &mailer.LogMailer{Logger: observability.Logger}
	}

	return server, nil
}

// SetMailer swaps the mail collaborator. Intended for tests.
func (s *Server) SetMailer(m mailer.Mailer) {
	s.mailer = m
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry span per request
	app.Use(middleware.Tracing())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
		MaxAge:       86400, // 24 hours
	}))

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/api/metrics")
	}

	// Blog content routes. Specific /:locale/:resource routes are defined
	// BEFORE the generic /:locale/:slug route.
	blog := api.Group("/blog")
	blog.Get("/:locale", s.GetPosts)
	blog.Get("/:locale/categories", s.GetCategories)
	blog.Get("/:locale/tags", s.GetTags)
	blog.Get("/:locale/category/:category", s.GetPostsByCategory)
	blog.Get("/:locale/tag/:tag", s.GetPostsByTag)
	blog.Get("/:locale/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "blog_search"), s.SearchPosts)
	blog.Get("/:locale/recent", s.GetRecentPosts)
	blog.Get("/:locale/:slug/related", s.GetRelatedPosts)
	blog.Get("/:locale/:slug", s.GetPost)

	// RSS feed
	api.Get("/feed/:locale", s.GetFeed)

	// Translation dictionaries
	api.Get("/i18n/:locale/:namespace", s.GetDictionary)
	api.Get("/i18n/negotiate", s.NegotiateLocale)

	// Form submissions
	forms := api.Group("/forms")
	forms.Post("/contact", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "form_contact"), s.SubmitContact)
	forms.Post("/rfq", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "form_rfq"), s.SubmitRFQ)

	// Admin routes
	admin := api.Group("/admin")
	admin.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "admin_login"), s.AdminLogin)
	protected := admin.Group("", s.AdminRequired())
	protected.Post("/content/rebuild", s.RebuildContent)
	protected.Get("/submissions", s.GetSubmissions)
	protected.Get("/content/reports", s.GetBuildReports)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
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

	// Content counts as ready once at least one locale index is live.
	contentStatus := "healthy"
	if len(s.library.Locales()) == 0 {
		contentStatus = "empty"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"content":  contentStatus,
		},
		"content_built_at": s.library.BuiltAt(),
		"time":             time.Now(),
	})
}

// AdminRequired returns middleware that rejects requests without a valid
// admin JWT issued by AdminLogin.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "forgeline-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if role, roleOk := claims["role"].(string); !roleOk || role != "admin" {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}

		sub, _ := claims["sub"].(string)
		c.Locals("adminUser", sub)
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "Forgeline API",
		BodyLimit: 64 << 20, // multipart form uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			observability.Logger.Error("unhandled request error",
				slog.String("path", c.Path()), slog.Any("error", err))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	observability.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.Any("error", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", slog.Any("error", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", slog.Any("error", rerr))
		}
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}
