package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/patholens/patholens-api/internal/auth"
	"github.com/patholens/patholens-api/internal/classify"
	"github.com/patholens/patholens-api/internal/config"
	"github.com/patholens/patholens-api/internal/identity"
	"github.com/patholens/patholens-api/internal/middleware"
	"github.com/patholens/patholens-api/internal/news"
	"github.com/patholens/patholens-api/internal/patient"
	"github.com/patholens/patholens-api/internal/profileimage"
	"github.com/patholens/patholens-api/internal/storage"
	"github.com/patholens/patholens-api/internal/token"
)

// Deps carries the shared infrastructure handed to route setup.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup wires repositories, services and handlers onto the app. With a nil DB
// the in-memory repositories are used, which keeps local runs and tests off
// Postgres.
func Setup(app *fiber.App, d Deps) error {
	var (
		userRepo    identity.Repository
		tokenRepo   token.Repository
		patientRepo patient.Repository
		imageRepo   profileimage.Repository
	)
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		tokenRepo = token.NewPostgresRepository(d.DB)
		patientRepo = patient.NewPostgresRepository(d.DB)
		imageRepo = profileimage.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		tokenRepo = token.NewMemoryRepository()
		patientRepo = patient.NewMemoryRepository()
		imageRepo = profileimage.NewMemoryRepository()
	}

	files, err := storage.NewLocal(d.Cfg.StoragePath, d.Cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	ids := identity.NewService(userRepo, d.Cfg.BcryptCost)
	tokens := token.NewService(tokenRepo)
	patients := patient.NewService(patientRepo, files, d.Cfg.MaxImageBytes)
	images := profileimage.NewService(imageRepo, files)

	classifier, err := classify.NewService(&classify.ExecRunner{
		Command: d.Cfg.ClassifierCommand,
		Script:  d.Cfg.ClassifierScript,
		Timeout: d.Cfg.ClassifierTimeout,
	}, d.Cfg.ScratchDir, d.Cfg.MaxImageBytes, d.Logger)
	if err != nil {
		return err
	}

	articles := news.NewService(
		news.NewClient(d.Cfg.NewsEndpoint, d.Cfg.NewsAPIKey),
		d.Cache, d.Cfg.NewsQuery, d.Cfg.NewsLanguage, d.Cfg.NewsCacheTTL, d.Logger,
	)

	authHandler := auth.NewHandler(ids, tokens, d.Logger)
	patientHandler := patient.NewHandler(patients)
	imageHandler := profileimage.NewHandler(images)
	classifyHandler := classify.NewHandler(classifier)
	newsHandler := news.NewHandler(articles)

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(d.Logger))

	RegisterHealthRoutes(app, d)
	RegisterStaticRoutes(app, d.Cfg)

	v1 := app.Group("/v1")
	requireAuth := middleware.Auth(tokens)
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginPerMinute)

	RegisterAuthRoutes(v1, authHandler, requireAuth, rateLimiter)
	RegisterMeRoutes(v1, authHandler, imageHandler, requireAuth)
	RegisterPatientRoutes(v1, patientHandler, requireAuth)
	RegisterClassifyRoutes(v1, classifyHandler)
	RegisterNewsRoutes(v1, newsHandler)

	return nil
}
