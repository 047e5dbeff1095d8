package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskhub/config"
	"taskhub/middleware"
	"taskhub/notify"
	"taskhub/routes"
	"taskhub/service"
	"taskhub/store"
	"taskhub/utils"
	"taskhub/worker"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	config.InitLogging()
	cfg := config.AppConfig
	log := logrus.WithField("component", "main")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.WithError(err).Warn("Sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := store.New(config.DB)

	hub := notify.NewHub(16)
	mailer := utils.NewSMTPMailer(utils.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
	})
	svc := service.New(db, utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		service.WithPublisher(hub),
		service.WithMailer(mailer),
		service.WithLogger(logrus.WithField("component", "service")),
	)

	var limiterStorage fiber.Storage
	if cfg.Redis.Enabled {
		rs := middleware.NewRedisStorage(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rs.Ping(pingCtx); err != nil {
			log.WithError(err).Warn("Redis unavailable, rate limiting in memory")
			_ = rs.Close()
		} else {
			limiterStorage = rs
			defer rs.Close()
		}
		cancel()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TaskHub",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	metrics := middleware.NewMetrics()
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.FrontendURL)))
	app.Use(metrics.Middleware())

	routes.SetupRoutes(app, routes.Deps{
		Service:        svc,
		Hub:            hub,
		DB:             db,
		Metrics:        metrics,
		FrontendURL:    cfg.FrontendURL,
		RateLimitAuth:  cfg.RateLimitAuth,
		LimiterStorage: limiterStorage,
		AccessLog:      true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reminders := worker.NewReminderWorker(db, svc, cfg.ReminderInterval, logrus.WithField("component", "reminders"))
	go reminders.Start(ctx)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	log.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	svc.Wait()
	log.Info("Server stopped")
}
