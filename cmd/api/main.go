package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduworld-api/internal/config"
	"github.com/noah-isme/eduworld-api/internal/database"
	"github.com/noah-isme/eduworld-api/internal/handler"
	"github.com/noah-isme/eduworld-api/internal/middleware"
	"github.com/noah-isme/eduworld-api/internal/repository"
	"github.com/noah-isme/eduworld-api/internal/router"
	"github.com/noah-isme/eduworld-api/internal/service"
	cloud "github.com/noah-isme/eduworld-api/pkg/cloudinary"
	"github.com/noah-isme/eduworld-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database handle")
	}
	defer sqlDB.Close()

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("stats caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	mediaStorage, uploadDir, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to initialise media storage")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	mediaService := service.NewMediaService(mediaStorage, uploadRepo, cfg.UploadMaxBytes, logger)
	progressService := service.NewProgressService(service.ProgressRepositories{
		Students: studentRepo,
		Classes:  classRepo,
		Subjects: subjectRepo,
		Units:    unitRepo,
		Quizzes:  quizRepo,
	}, validate, logger, cfg.ProgressDebug)
	studentService := service.NewStudentService(studentRepo, classRepo, subjectRepo, validate, logger)
	classService := service.NewClassService(classRepo, curriculumRepo, mediaService, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, classRepo, curriculumRepo, mediaService, validate, logger)
	unitService := service.NewUnitService(unitRepo, subjectRepo, curriculumRepo, mediaService, validate, logger)
	quizService := service.NewQuizService(quizRepo, unitRepo, curriculumRepo, validate, logger)
	statsService := service.NewAdminStatsService(statsRepo, redisClient, cfg.StatsCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes) * 4,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		ClassHandler:      handler.NewClassHandler(classService, logger),
		SubjectHandler:    handler.NewSubjectHandler(subjectService, logger),
		UnitHandler:       handler.NewUnitHandler(unitService, logger),
		QuizHandler:       handler.NewQuizHandler(quizService, logger),
		AdminStatsHandler: handler.NewAdminStatsHandler(statsService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		WriteLimiter:      middleware.RateLimit("progress", cfg.RateLimitMax, cfg.RateLimitWindow),
		DB:                sqlDB,
		UploadDir:         uploadDir,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("storage", cfg.StorageDriver).Msg("server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

// buildStorage returns the media backend and, for local storage, the directory to serve statically.
func buildStorage(cfg config.Config, logger zerolog.Logger) (service.MediaStorage, string, error) {
	if cfg.StorageDriver == config.StorageDriverCloudinary {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		return uploader, "", err
	}

	local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadPublicPath, logger)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
