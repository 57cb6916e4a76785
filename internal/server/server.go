package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "nourish/docs" // swagger docs
	"nourish/internal/bootstrap"
	"nourish/internal/config"
	"nourish/internal/featureflags"
	"nourish/internal/middleware"
	"nourish/internal/models"
	"nourish/internal/repository"
	"nourish/internal/service"
	"nourish/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
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
	auth           *middleware.Auth
	mediaStore     *storage.LocalStore
	featureFlags   *featureflags.Manager

	userRepo repository.UserRepository

	feedService      *service.FeedService
	postService      *service.PostService
	commentService   *service.CommentService
	graphService     *service.GraphService
	tierService      *service.TierService
	mealService      *service.MealService
	userService      *service.UserService
	mediaService     *service.MediaService
	reconcileService *service.ReconcileService
}

// NewServer connects to the database and Redis and wires every dependency.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Redis is optional; without it caching, revocation and rate limits are off.
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	repository.SetStoreTimeout(cfg.StoreTimeout())

	store, err := storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	graphRepo := repository.NewGraphRepository(db)
	tierRepo := repository.NewTierRepository(db)
	mealRepo := repository.NewMealRepository(db)

	auth := middleware.NewAuth(cfg.JWTSecret, cfg.TokenTTL(), redisClient)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("nourish-api"),
		auth:           auth,
		mediaStore:     store,
		featureFlags:   flags,
		userRepo:       userRepo,

		feedService:      service.NewFeedService(postRepo, flags),
		postService:      service.NewPostService(postRepo, tierRepo, mealRepo),
		commentService:   service.NewCommentService(commentRepo, postRepo),
		graphService:     service.NewGraphService(graphRepo, userRepo, tierRepo),
		tierService:      service.NewTierService(tierRepo, graphRepo),
		mealService:      service.NewMealService(mealRepo),
		userService:      service.NewUserService(userRepo, auth),
		mediaService:     service.NewMediaService(store, cfg.MediaMaxUploadMB),
		reconcileService: service.NewReconcileService(graphRepo, commentRepo),
	}
	return s, nil
}

// ReconcileService exposes the counter sweep for the job scheduler.
func (s *Server) ReconcileService() *service.ReconcileService {
	return s.reconcileService
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	maxMB := s.config.MediaMaxUploadMB
	if maxMB <= 0 {
		maxMB = service.DefaultMediaMaxUploadMB
	}

	app := fiber.New(fiber.Config{
		AppName:     "Nourish API",
		BodyLimit:   (maxMB + 1) * 1024 * 1024,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, &models.AppError{
					Code:    codeForStatus(fe.Code),
					Message: fe.Message,
				})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusServiceUnavailable:
		return models.CodeTransient
	}
	if status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError {
		return models.CodeValidation
	}
	return models.CodeInternal
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	// Propagate request ID into the request context for service-layer logs.
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				ResponseTime:    time.Now().UTC(),
				ResponseMessage: "Too many requests, please try again later.",
				Error:           "Too many requests, please try again later.",
				Code:            "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	required := s.auth.Required()
	optional := s.auth.Optional()

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/media", s.mediaStore.Dir(), fiber.Static{MaxAge: 86400})

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/enums", s.GetEnums)

	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", required, s.Logout)

	// Define specific routes BEFORE the generic /:id routes.
	posts := api.Group("/posts")
	posts.Get("/feed", optional, s.GetFeed)
	posts.Get("/liked-posts", required, s.GetLikedPosts)
	posts.Post("/", required, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", required, s.LikePost)
	posts.Post("/:id/unlike", required, s.UnlikePost)
	posts.Get("/:id/comments", optional, s.GetComments)
	posts.Post("/:id/comments", required, middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/comments/:commentId/replies", optional, s.GetReplies)
	posts.Put("/:id/comments/:commentId", required, s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", required, s.DeleteComment)
	posts.Get("/:id", optional, s.GetPost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	users.Get("/", s.SearchUsers)
	users.Put("/", required, s.UpdateMyProfile)
	users.Get("/profile", required, s.GetMyProfile)
	users.Post("/reset-password", required, middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "reset_password"), s.ResetPassword)
	users.Post("/change-profilepic", required, s.ChangeProfilePicture)
	users.Post("/:id/follow", required, s.FollowUser)
	users.Post("/:id/unfollow", required, s.UnfollowUser)
	users.Get("/:id/tiers", s.GetUserTiers)
	users.Get("/:id", s.GetUserProfile)

	tiers := api.Group("/tiers")
	tiers.Post("/", required, s.CreateTier)
	tiers.Get("/own", required, s.GetOwnTiers)
	tiers.Get("/subscribed", required, s.GetSubscribedTiers)
	tiers.Post("/:id/subscribe", required, s.SubscribeTier)
	tiers.Post("/:id/unsubscribe", required, s.UnsubscribeTier)
	tiers.Get("/:id", s.GetTier)
	tiers.Put("/:id", required, s.UpdateTier)
	tiers.Delete("/:id", required, s.DeleteTier)

	meals := api.Group("/meals")
	meals.Post("/", required, s.CreateMeal)
	meals.Get("/", required, s.GetMyMeals)
	meals.Get("/:id", required, s.GetMeal)

	media := api.Group("/media", required)
	media.Post("/upload", middleware.RateLimit(
		s.redis, 30, 10*time.Minute, "media_upload"), s.UploadMedia)

	admin := api.Group("/admin", required, s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/reconcile", s.RunReconcile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so an
// absent client does not fail readiness; an unreachable one does.
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

	redisStatus := "disabled"
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after Auth.Required so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.isAdminByUserID(c.UserContext(), actorID(c))
		if err != nil {
			return respondServiceError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
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

	middleware.Logger.Info("server shutdown complete")
	return nil
}
