package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/strengthlab/overload/internal/config"
	"github.com/strengthlab/overload/internal/domain"
	"github.com/strengthlab/overload/internal/handler"
	"github.com/strengthlab/overload/internal/middleware"
	"github.com/strengthlab/overload/internal/repository"
	"github.com/strengthlab/overload/internal/service"
	"github.com/strengthlab/overload/internal/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
)

// idempotencyTTL is how long a correlation id's response is replayable.
const idempotencyTTL = 24 * time.Hour

// AppDependencies holds the dependencies required to start the application.
// Clock and FileRepo are optional overrides; tests inject fakes, production
// leaves them nil.
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	AuthClient  service.FirebaseAuthClient
	Clock       domain.Clock
	FileRepo    domain.FileRepository
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock()
	}

	// Repositories
	workoutRepo := repository.NewMongoWorkoutRepository(deps.MongoDB)
	templateRepo := repository.NewMongoTemplateRepository(deps.MongoDB)
	planRepo := repository.NewMongoTrainingPlanRepository(deps.MongoDB)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	refreshTokenRepo := repository.NewMongoRefreshTokenRepository(deps.MongoDB)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)

	fileRepo := deps.FileRepo
	if fileRepo == nil {
		s3Repo, err := repository.NewS3FileRepository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 repository: %v", err)
		} else {
			fileRepo = s3Repo
		}
	}

	// Services
	loc := deps.Config.Location()
	workoutService := service.NewWorkoutService(workoutRepo, templateRepo, cacheRepo, clock, loc)
	templateService := service.NewTemplateService(templateRepo)
	historyAggregator := service.NewHistoryAggregator(workoutRepo)
	coachService := service.NewCoachService(
		workoutRepo,
		templateRepo,
		historyAggregator,
		service.NewSuggestionEngine(),
		cacheRepo,
		deps.Config.App.SuggestionCacheTTL,
	)
	exportService := service.NewExportService(workoutRepo, templateRepo, fileRepo, clock, loc)
	plannerService := service.NewPlannerService(
		deps.Config.OpenRouter.APIKey,
		deps.Config.OpenRouter.Model,
		deps.Config.OpenRouter.Timeout,
		planRepo,
		templateRepo,
	)
	tokenService := service.NewTokenService(deps.Config.JWT, refreshTokenRepo, userRepo)
	authService := service.NewAuthService(userRepo, deps.AuthClient, tokenService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, tokenService)
	workoutHandler := handler.NewWorkoutHandler(workoutService, coachService, exportService)
	templateHandler := handler.NewTemplateHandler(templateService)
	planHandler := handler.NewPlanHandler(plannerService)

	app := fiber.New(fiber.Config{
		AppName:      "Overload API",
		BodyLimit:    int(deps.Config.Server.MaxBodySizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "overload-api",
		})
	})

	v1 := app.Group("/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.LoginOrRegister)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Everything below requires a valid access token.
	api := v1.Group("", middleware.VerifyOverloadToken(deps.Config.JWT.Secret))

	workouts := api.Group("/workouts")
	// Lifecycle transitions replay safely when the client retries with the
	// same correlation id.
	workouts.Use(middleware.IdempotencyMiddleware(deps.RedisClient, idempotencyTTL))
	workouts.Post("/", workoutHandler.Create)
	workouts.Get("/", workoutHandler.List)
	workouts.Post("/export", workoutHandler.Export)
	workouts.Get("/:id", workoutHandler.Get)
	workouts.Patch("/:id", workoutHandler.Update)
	workouts.Delete("/:id", workoutHandler.Delete)
	workouts.Put("/:id/exercises", workoutHandler.UpdateExercises)
	workouts.Post("/:id/start", workoutHandler.Start)
	workouts.Post("/:id/cancel", workoutHandler.Cancel)
	workouts.Post("/:id/finish", workoutHandler.Finish)
	workouts.Post("/:id/suggestions", workoutHandler.Suggest)

	templates := api.Group("/templates")
	templates.Post("/", templateHandler.Create)
	templates.Get("/", templateHandler.List)
	templates.Get("/:id", templateHandler.Get)
	templates.Put("/:id", templateHandler.Update)
	templates.Delete("/:id", templateHandler.Delete)

	plans := api.Group("/plans")
	plans.Post("/generate", planHandler.Generate)
	plans.Post("/onboarding", planHandler.Onboard)
	plans.Get("/", planHandler.List)
	plans.Get("/:id", planHandler.Get)
	plans.Delete("/:id", planHandler.Delete)

	return app
}

// customErrorHandler maps domain errors onto HTTP statuses so handlers can
// return service errors directly.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		code = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		code = fiber.StatusConflict
	default:
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
	}
	if code == fiber.StatusInternalServerError {
		log.Printf("Error: %v", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
