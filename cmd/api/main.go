package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/money-marathon/internal/auth"
	"github.com/Dan9191/money-marathon/internal/config"
	"github.com/Dan9191/money-marathon/internal/handler"
	"github.com/Dan9191/money-marathon/internal/middleware"
	"github.com/Dan9191/money-marathon/internal/repository"
	"github.com/Dan9191/money-marathon/internal/scheduler"
	"github.com/Dan9191/money-marathon/internal/service"
	"github.com/Dan9191/money-marathon/internal/tokenstore"
	"github.com/Dan9191/money-marathon/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var repo repository.Store
	if cfg.DBConn == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		repo = repository.NewMemoryStore()
	} else {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		pg := repository.NewRepository(db)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		repo = pg
	}

	// Token revocation
	var tokens tokenstore.Store
	if cfg.RedisAddr != "" {
		rs := tokenstore.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			logger.Fatalf("Failed to ping redis: %v", err)
		}
		tokens = rs
	} else {
		logger.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
		tokens = tokenstore.NewMemoryStore()
	}

	// Notifications
	var notifier service.Notifier
	var sender *email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewSender(cfg, logger)
		notifier = sender
	}

	// Initialize layers
	svc := service.NewService(repo, logger, cfg, tokens, notifier)
	h := handler.NewHandler(svc, logger)
	jwt := auth.JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}

	// Setup router
	r := handler.NewRouter(h, middleware.AuthMiddleware(jwt, tokens, logger))
	r.Use(middleware.RequestLogger(logger))

	// Reminder job
	if cfg.RemindersEnabled {
		sched := scheduler.New(ctx, repo, sender, logger)
		if err := sched.ScheduleReminders(cfg.ReminderSchedule); err != nil {
			logger.Fatalf("Failed to schedule reminders: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.CORS(cfg.AllowedOrigins)(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
