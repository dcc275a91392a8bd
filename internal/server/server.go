// Package server contains the HTTP handlers that render the blog's pages.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/service"
	"blogicum/internal/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// promMiddleware returns the process-wide Prometheus middleware. Registration
// happens once; every Server instance (including test servers) shares it.
func promMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("blogicum")
	})
	return prom
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	categoryRepo   repository.CategoryRepository
	locationRepo   repository.LocationRepository
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: promMiddleware(),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		categoryRepo:   categoryRepo,
		locationRepo:   locationRepo,
	}
	server.postService = service.NewPostService(postRepo, categoryRepo, userRepo)
	server.commentService = service.NewCommentService(commentRepo, postRepo)
	server.userService = service.NewUserService(userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Session cookie, when present, puts the user ID in locals. Never blocks.
	app.Use(s.sessionUser())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded media. In production a front server handles this path.
	if !s.config.IsProduction() && s.config.MediaRoot != "" {
		app.Static(s.config.MediaURL, s.config.MediaRoot)
	}

	// Auth pages
	auth := app.Group("/auth")
	auth.Get("/registration", s.SignupPage)
	auth.Post("/registration", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Get("/login", s.LoginPage)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)

	// Public pages
	app.Get("/", s.Index)
	app.Get("/category/:slug", s.CategoryPosts)
	app.Get("/profile/:username", s.Profile)

	// Profile editing always targets the session user, so no ID in the path.
	app.Get("/user", s.RequireAuth(), s.EditProfilePage)
	app.Post("/user", s.RequireAuth(), s.EditProfile)

	posts := app.Group("/posts")
	// Specific routes before the generic /:id ones.
	posts.Get("/create", s.RequireAuth(), s.CreatePostPage)
	posts.Post("/create", s.RequireAuth(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/edit", s.RequireAuth(), s.EditPostPage)
	posts.Post("/:id/edit", s.RequireAuth(), s.EditPost)
	posts.Get("/:id/delete", s.RequireAuth(), s.DeletePostPage)
	posts.Post("/:id/delete", s.RequireAuth(), s.DeletePost)
	posts.Get("/:id/comment", s.RequireAuth(), s.AddCommentPage)
	posts.Post("/:id/comment", s.RequireAuth(), middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.AddComment)
	posts.Get("/:id/edit_comment/:commentId", s.RequireAuth(), s.EditCommentPage)
	posts.Post("/:id/edit_comment/:commentId", s.RequireAuth(), s.EditComment)
	posts.Get("/:id/delete_comment/:commentId", s.RequireAuth(), s.DeleteCommentPage)
	posts.Post("/:id/delete_comment/:commentId", s.RequireAuth(), s.DeleteComment)
	posts.Get("/:id", s.PostDetail)

	// Anything unmatched is a rendered 404, not fiber's plain-text one.
	app.Use(func(c *fiber.Ctx) error {
		return s.renderNotFound(c, nil)
	})
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
		// Redis only backs rate limiting, so its absence degrades rather
		// than fails readiness.
		redisStatus = "unavailable"
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
		},
		"time": time.Now(),
	})
}

// sessionUser reads the session cookie and, when valid, records the user ID
// in locals and the request context. Anonymous requests pass through.
func (s *Server) sessionUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := s.sessionUserID(c); ok {
			c.Locals("userID", userID)
			ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
			c.SetUserContext(ctx)
		}
		return c.Next()
	}
}

// RequireAuth returns the authentication middleware for pages that need a
// logged-in user. Anonymous visitors are sent to the login page with a next
// parameter pointing back at the page they wanted.
func (s *Server) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("userID").(uint); !ok {
			return c.Redirect("/auth/login/?next="+c.Path(), fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// App builds the Fiber application with views, middleware, and routes.
// Tests drive this app directly through app.Test.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "Blogicum",
		Views:       web.Engine(),
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return s.renderError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// sessionUserID extracts and validates the user ID from the session cookie.
func (s *Server) sessionUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := c.Cookies(sessionCookieName)
	if tokenString == "" {
		return 0, false
	}

	claims, err := s.parseToken(tokenString)
	if err != nil {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, false
	}
	return uint(userID), true
}

// renderError maps domain errors onto HTML error pages.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	if models.IsNotFound(err) {
		return s.renderNotFound(c, err)
	}
	if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusNotFound {
		return s.renderNotFound(c, nil)
	}

	observability.RecordErrorInContext(c.UserContext(), err)
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		"error", err.Error(),
		"path", c.Path(),
	)
	return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{})
}
