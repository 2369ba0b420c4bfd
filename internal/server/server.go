// Package server wires the HTTP surface: middleware, routes and handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scaffold/internal/auth"
	"scaffold/internal/cache"
	"scaffold/internal/captcha"
	"scaffold/internal/config"
	"scaffold/internal/database"
	"scaffold/internal/mailer"
	"scaffold/internal/middleware"
	"scaffold/internal/models"
	"scaffold/internal/notifications"
	"scaffold/internal/observability"
	"scaffold/internal/repository"
	"scaffold/internal/service"
	"scaffold/internal/storage"

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
	cache          *cache.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	limiter        *middleware.Limiter
	captcha        captcha.Verifier
	mailer         mailer.Sender

	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	blogService    *service.BlogService
	authService    *service.AuthService
	contactService *service.ContactService
	uploadService  *service.UploadService
}

// Option overrides a collaborator built by NewServerWithDeps.
type Option func(*Server)

// WithMailer replaces the SES sender.
func WithMailer(sender mailer.Sender) Option {
	return func(s *Server) { s.mailer = sender }
}

// WithCaptcha replaces the CAPTCHA verifier.
func WithCaptcha(v captcha.Verifier) Option {
	return func(s *Server) { s.captcha = v }
}

// NewServer connects to the database and Redis described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, events, revocation and rate limiting then
// degrade to no-ops.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	files, err := storage.NewFiles(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	store := cache.New(redisClient)
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		cache:          store,
		promMiddleware: observability.InitMetrics("scaffold-api"),
		limiter:        middleware.NewLimiter(redisClient, cfg.Env != "development" && cfg.Env != "test"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db, store),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.captcha == nil {
		s.captcha = captcha.New(cfg.RecaptchaPrivateKey)
	}
	if s.mailer == nil {
		s.mailer = mailer.New(context.Background(), cfg.MailConfigPath, mailer.Credentials{
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
		})
	}

	s.blogService = service.NewBlogService(s.postRepo, notifications.NewNotifier(redisClient))
	s.authService = service.NewAuthService(
		s.userRepo,
		auth.NewHasher(cfg.BcryptCost),
		auth.NewTokens(cfg.JWTSecret),
		auth.NewRevocations(redisClient),
	)
	s.contactService = service.NewContactService(s.mailer)
	s.uploadService = service.NewUploadService(files)

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "scaffold",
		BodyLimit: 16 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware installs the global middleware chain.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" || origins == "*" {
		origins = "http://localhost:5000,http://127.0.0.1:5000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

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

	app.Use(s.ResolveIdentity())
}

// SetupRoutes registers every endpoint.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Index)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Post("/login", s.limiter.Handler("login", 10, 5*time.Minute), s.Login)
	app.Post("/logout", s.RequireLogin(), s.Logout)
	app.Get("/welcome", s.RequireLogin(), s.Welcome)
	app.Post("/contact", s.limiter.Handler("contact", 5, 10*time.Minute), s.Contact)

	app.Get("/blog", s.ListPublishedPosts)
	app.Get("/blog/admin", s.RequireAdmin(), s.ListAllPosts)
	app.Post("/create", s.RequireAdmin(), s.CreatePost)
	app.Post("/upload", s.RequireAdmin(), s.Upload)
	app.Get("/files/:filename", s.ServeFile)

	app.Get("/:id<int>", s.ViewPost)
	app.Post("/:id<int>/update", s.RequireAdmin(), s.UpdatePost)
	app.Post("/:id<int>/delete", s.RequireAdmin(), s.DeletePost)
	app.Post("/:id<int>/publish", s.RequireAdmin(), s.TogglePublish)
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
