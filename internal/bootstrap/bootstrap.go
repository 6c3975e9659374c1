package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/campusbuddy/internal/app/controllers"
	"github.com/yigit/campusbuddy/internal/app/matching"
	appMigrations "github.com/yigit/campusbuddy/internal/app/migrations"
	appRepos "github.com/yigit/campusbuddy/internal/app/repositories"
	appRoutes "github.com/yigit/campusbuddy/internal/app/routes"
	appServices "github.com/yigit/campusbuddy/internal/app/services"
	"github.com/yigit/campusbuddy/internal/config"
	"github.com/yigit/campusbuddy/internal/db"
	appMiddleware "github.com/yigit/campusbuddy/internal/middleware"
	"github.com/yigit/campusbuddy/internal/pkg/breaker"
	"github.com/yigit/campusbuddy/internal/pkg/logger"
	"github.com/yigit/campusbuddy/internal/seed"
)

// DefaultConfigPath is where the config file is looked up when none is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos           *appRepos.Repositories
	Breaker         *breaker.Breaker
	Matcher         *matching.Matcher
	BuddyService    appServices.BuddyService
	BuddyController *appControllers.BuddyController
	Logger          zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and,
// when enabled, seeds the demo campus.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	if err := Migrate(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, database.Pool, lgr); err != nil {
			// Seeding is a convenience; the service works without it
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// Migrate applies the pending SQL files from the configured migrations directory
func Migrate(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	return nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.Breaker = breaker.New(breaker.Settings{
		Name:         "postgres",
		MaxRequests:  uint32(cfg.Breaker.MaxRequests),
		Interval:     cfg.BreakerInterval(),
		Timeout:      cfg.BreakerTimeout(),
		MinRequests:  uint32(cfg.Breaker.MinRequests),
		FailureRatio: cfg.Breaker.FailureRatio,
	}, lgr)

	deps.Repos = appRepos.NewRepositories(database.Pool, deps.Breaker, appRepos.Options{
		MaxMenteesPerBuddy: cfg.Matching.MaxMenteesPerBuddy,
		LockTimeout:        cfg.LockTimeout(),
	}, lgr)

	deps.Matcher = matching.NewMatcher(
		deps.Repos.ParticipantRepository,
		deps.Repos.MatchRepository,
		deps.Repos.CampusLockRepository,
		cfg.Matching.MaxMenteesPerBuddy,
		lgr,
	)

	deps.BuddyService = appServices.NewBuddyService(
		deps.Repos.OptInRepository,
		deps.Repos.MatchRepository,
		deps.Repos.MeetingRepository,
		deps.Matcher,
		lgr,
		appServices.WithRunTimeout(cfg.RunTimeout()),
	)

	deps.BuddyController = appControllers.NewBuddyController(deps.BuddyService)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, health appRoutes.HealthChecker, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.BuddyController, health, appRoutes.Options{
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	return router
}
