package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gradepulse/internal/api"
	"gradepulse/internal/attendance"
	"gradepulse/internal/classsection"
	"gradepulse/internal/config"
	"gradepulse/internal/db"
	"gradepulse/internal/fields"
	"gradepulse/internal/logger"
	"gradepulse/internal/notify"
	"gradepulse/internal/queue"
	"gradepulse/internal/replies"
	"gradepulse/internal/roster"
	"gradepulse/internal/storage"
	"gradepulse/internal/students"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repos := db.NewRepositories(database)

	// Initialize Redis client
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	producer := queue.NewProducer(redisClient, cfg)

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	notifier, err := notify.New(cfg, producer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notifier")
	}

	fieldService := fields.NewService(repos.Fields)
	sectionService := classsection.NewService(repos.Sections)
	committer := roster.NewCommitter(repos.Students, sectionService, notifier, roster.CommitConfig{
		NotificationCap: cfg.Notifications.BatchCap,
		WelcomeMessage:  cfg.Notifications.WelcomeMessage,
	})

	studentService := students.NewService(repos.Students, fieldService, sectionService, students.Defaults{
		AcademicYear: cfg.Import.DefaultAcademicYear,
		Board:        cfg.Import.DefaultBoard,
	})

	handler := api.NewHandler(api.Deps{
		Config:     cfg,
		Importer:   roster.NewImporter(fieldService, repos.Students),
		Committer:  committer,
		Fields:     fieldService,
		Students:   studentService,
		Sections:   repos.Sections,
		Attendance: attendance.NewService(repos.Attendance, repos.Students, repos.Sections, notifier, cfg.Notifications.Signature),
		Alerts:     attendance.NewAlertService(repos.Students, notifier, cfg.Notifications.Signature, cfg.Notifications.BatchCap),
		Replies:    replies.NewService(repos.Students, notifier),
		Sessions:   queue.NewSessionStore(redisClient, cfg),
		Archive:    s3Storage,
	})

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(handler)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
