package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saifurrahmanctg/micro-earn-server/config"
	"github.com/saifurrahmanctg/micro-earn-server/database"
	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/logger"
	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/notify"
	"github.com/saifurrahmanctg/micro-earn-server/routes"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

func main() {
	// Load .env if present without overwriting already-set environment variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	cfg := config.Load()
	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Output, cfg.Log.File)
	if err != nil {
		logger.Fatal("logger setup failed: %v", err)
	}
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if err := utils.SetupJWT(cfg); err != nil {
		logger.Fatal("jwt setup failed: %v", err)
	}
	utils.SetupRedis(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database: %v", err)
	}
	defer database.Close(db)

	// Auto-migrate only in development to avoid accidental production schema changes
	if cfg.Server.Env == "development" {
		logger.Info("development mode, running auto-migration")
		if err := db.AutoMigrate(
			&models.User{},
			&models.Task{},
			&models.Submission{},
			&models.Withdrawal{},
			&models.Payment{},
			&models.Notification{},
			&models.Report{},
		); err != nil {
			logger.Fatal("failed to migrate database: %v", err)
		}
	}

	engine := ledger.New(db)

	var uploader *utils.S3Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = utils.NewS3Uploader(cfg)
		if err != nil {
			logger.Fatal("s3 setup failed: %v", err)
		}
	} else {
		logger.Warn("s3 bucket not configured, image uploads disabled")
	}

	mailer := &notify.SMTPMailer{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	}
	notifier, err := notify.New(db, mailer, cfg.Notify.SweepInterval(), cfg.Notify.Workers, cfg.Notify.MaxAttempts)
	if err != nil {
		logger.Fatal("notifier setup failed: %v", err)
	}
	if cfg.SMTP.Host != "" {
		notifier.Start()
	} else {
		logger.Warn("smtp host not configured, notification emails disabled")
	}

	router := routes.InitRouter(db, engine, uploader, cfg)

	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery
	handler := middleware.RequestLog(
		middleware.SecurityHeaders(cfg.Server.Env)(
			middleware.RequestID(
				middleware.MaxBody(cfg.Server.MaxBodyBytes)(
					middleware.Timeout(time.Duration(cfg.Server.ReqTimeoutSec) * time.Second)(
						middleware.Recovery(router),
					),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown: %v", err)
	}
	if err := notifier.Shutdown(ctx); err != nil {
		logger.Error("notifier shutdown: %v", err)
	}
	logger.Info("server exited")
}
