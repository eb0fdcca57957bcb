// Package server contains the HTTP handlers for the microblog API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"microblog/internal/config"
	"microblog/internal/feed"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/observability"
	"microblog/internal/repository"
	"microblog/internal/search"
	"microblog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	followRepo     repository.FollowRepository
	index          search.Index
	feeds          *feed.Assembler
	postService    *service.PostService
	profileService *service.ProfileService
	followService  *service.FollowService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The bootstrap layer establishes DB, Redis and the search index.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, index search.Index) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if index == nil {
		return nil, fmt.Errorf("search index is required")
	}

	s := newServer(cfg,
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewFollowRepository(db),
		index,
	)
	s.db = db
	s.redis = redisClient
	s.promMiddleware = middleware.InitMetrics(observability.ServiceName)
	return s, nil
}

// newServer wires services and the feed assembler over the given repositories.
func newServer(cfg *config.Config, users repository.UserRepository, posts repository.PostRepository, follows repository.FollowRepository, index search.Index) *Server {
	return &Server{
		config:         cfg,
		userRepo:       users,
		postRepo:       posts,
		followRepo:     follows,
		index:          index,
		feeds:          feed.NewAssembler(users, posts, index, cfg.PostsPerPage),
		postService:    service.NewPostService(posts, index),
		profileService: service.NewProfileService(users, follows),
		followService:  service.NewFollowService(follows, users),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())

	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Location, X-Trace-ID",
		AllowCredentials: true,
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	auth := middleware.AuthRequired(middleware.AuthConfig{Secret: s.config.JWTSecret, Redis: s.redis})
	seen := middleware.LastSeen(s.userRepo)

	for _, path := range []string{"/", "/index"} {
		app.Get(path, auth, seen, s.Home)
		app.Post(path, auth, seen, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	}

	app.Get("/user/:username", auth, seen, s.UserProfile)
	app.Get("/edit_profile", auth, seen, s.EditProfileForm)
	app.Post("/edit_profile", auth, seen, s.EditProfile)
	app.Get("/follow/:username", auth, seen, s.Follow)
	app.Get("/unfollow/:username", auth, seen, s.Unfollow)
	app.Get("/explore", auth, seen, s.Explore)
	app.Get("/search", auth, seen, middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis reachability. Redis is optional
// for serving traffic, so only a Redis that is configured but failing, or a
// failing database, makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
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
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	checks := fiber.Map{
		"database": dbStatus,
		"redis":    redisStatus,
	}
	if s.index != nil {
		checks["search"] = s.index.Name()
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": checks,
		"time":   time.Now(),
	})
}

// newApp builds the fiber app. Paths are unescaped before routing so
// :username params match the names links are built from.
func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "Microblog API",
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// Start builds the fiber app and blocks serving on the configured port.
func (s *Server) Start() error {
	app := newApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port), slog.String("search", s.index.Name()))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
