package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"babymind/internal/config"
	"babymind/internal/database"
	"babymind/internal/events"
	"babymind/internal/handlers"
	"babymind/internal/jobs"
	"babymind/internal/repository"
	"babymind/internal/rules"
	"babymind/internal/security"
	"babymind/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	db.Logger = logger

	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// A broken rule file is a configuration error, refuse to start
	catalog := rules.MustLoad(cfg.RulesPath)

	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("failed to create token issuer", zap.Error(err))
	}

	// Initialize repositories
	babyRepo := repository.NewBabyRepository(db)
	entityRepo := repository.NewEntityRepository(db)

	// Initialize services
	bus := events.NewBus(logger)
	babyService := service.NewBabyService(babyRepo)
	tracker := service.NewTracker(entityRepo, bus, service.NewProgressCalculator(cfg.LevelThreshold), logger)
	taskService := service.NewTaskService(babyService, tracker, service.NewDailyTaskGenerator(catalog), logger)
	reminderService := service.NewReminderService(entityRepo, tracker, bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emailService, err := service.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		logger.Fatal("failed to initialize email service", zap.Error(err))
	}
	reminders := bus.Subscribe(events.TopicReminderDue)
	defer reminders.Close()
	go service.NewReminderNotifier(emailService, babyService, cfg.ReminderTo, logger).Run(ctx, reminders)

	scheduler := jobs.NewScheduler(time.Local, logger)
	if err := scheduler.AddDailyTasks(cfg.DailyTaskSchedule, taskService); err != nil {
		logger.Fatal("failed to schedule daily tasks", zap.Error(err))
	}
	if err := scheduler.AddReminderScan(cfg.ReminderSchedule, reminderService); err != nil {
		logger.Fatal("failed to schedule reminder scan", zap.Error(err))
	}
	scheduler.Start()

	api := handlers.NewAPI(handlers.Services{
		Babies:          babyService,
		Tracker:         tracker,
		Recommendations: service.NewRecommendationService(babyService, catalog),
		Immunity:        service.NewImmunityService(babyService, tracker, catalog),
		Tasks:           taskService,
	}, tokens, handlers.NewMiddleware(tokens, cfg.AdminSecret, logger), time.Local, logger)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown failed", zap.Error(err))
	}
	if n := bus.Dropped(); n > 0 {
		logger.Warn("events dropped by slow subscribers", zap.Uint64("count", n))
	}
}
