package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/bgrs/internal/app/controllers"
	appRepos "github.com/yigit/bgrs/internal/app/repositories"
	appRoutes "github.com/yigit/bgrs/internal/app/routes"
	appServices "github.com/yigit/bgrs/internal/app/services"
	"github.com/yigit/bgrs/internal/config"
	"github.com/yigit/bgrs/internal/db"
	appMiddleware "github.com/yigit/bgrs/internal/middleware"
	pkgAuth "github.com/yigit/bgrs/internal/pkg/auth"
	"github.com/yigit/bgrs/internal/pkg/connection"
	"github.com/yigit/bgrs/internal/pkg/helpers"
	"github.com/yigit/bgrs/internal/pkg/logger"
	"github.com/yigit/bgrs/internal/pkg/metrics"
	"github.com/yigit/bgrs/internal/seed"
)

// Options are the command-line overrides applied on top of the config file and
// environment. Empty fields leave the configuration untouched.
type Options struct {
	ConfigPath  string
	Port        string
	CoursesPath string
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos               *appRepos.Repositories
	RegistrationService appServices.RegistrationService
	Metrics             *metrics.Metrics
	ProtocolController  *appControllers.ProtocolController
	CourseController    *appControllers.CourseController
	Hub                 *connection.Hub
	JWTService          *pkgAuth.JWTService
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration, applies opts and initializes the logger.
func LoadConfigAndSetupLogger(opts Options) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	if opts.Port != "" {
		cfg.Server.Port = opts.Port
	}
	if opts.CoursesPath != "" {
		cfg.Catalog.Source = config.CatalogSourceFile
		cfg.Catalog.Path = opts.CoursesPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid command-line overrides")
		return nil, zerolog.Logger{}, fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	if env := cfg.EnvOverrides(); len(env) > 0 {
		lgr.Info().Strs("vars", env).Msg("Configuration overridden from environment")
	}
	return cfg, lgr, nil
}

// BuildDependencies initializes repositories, the registration engine, controllers and
// the connection hub.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Metrics = metrics.New()
	deps.Repos = appRepos.NewRepositories(pkgAuth.NewBcryptHasher(cfg.Auth.BcryptCost))
	deps.RegistrationService = appServices.NewRegistrationService(deps.Repos, lgr)

	deps.ProtocolController = appControllers.NewProtocolController(deps.RegistrationService, deps.Metrics, lgr)
	deps.Hub = connection.NewHub(
		deps.ProtocolController.NewConnectionProtocol,
		connection.Config{
			WriteWait:   helpers.ParseDuration(cfg.Server.WriteWait, connection.DefaultConfig().WriteWait),
			IdleTimeout: helpers.ParseDuration(cfg.Server.IdleTimeout, 0),
			SendBuffer:  cfg.Server.SendBuffer,
		},
		deps.Metrics,
		lgr,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.CourseController = appControllers.NewCourseController(deps.RegistrationService, deps.Hub, lgr)

	return deps, nil
}

// SetupCatalog loads the course catalog from the configured source. The server does
// not start without one.
func SetupCatalog(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) error {
	var src seed.CatalogSource
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return err
		}
		// The catalog is read once; the pool is not needed afterwards.
		defer database.Close()
		src = seed.PostgresSource{DB: database.Pool, Table: cfg.Catalog.Table}
	default:
		src = seed.FileSource{Path: cfg.Catalog.Path}
	}

	return seed.LoadCatalog(ctx, src, deps.RegistrationService, deps.Metrics, lgr)
}

// SetupRouter configures the Gin engine of the ops API with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Ops.Mode) {
	case gin.DebugMode:
		gin.SetMode(gin.DebugMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Ops.TrustedProxies); err != nil {
		lgr.Warn().Err(err).Msg("Ignoring invalid trusted proxies")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()))

	appRoutes.SetupRouter(router,
		deps.CourseController,
		deps.AuthMiddleware,
		deps.Metrics.Handler(),
	)

	return router
}
