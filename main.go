package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gastrade/m/internal/api"
	"gastrade/m/internal/backup"
	"gastrade/m/internal/config"
	"gastrade/m/internal/database"
	"gastrade/m/internal/migrations"
	"gastrade/m/internal/seed"
	"gastrade/m/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Must(logger.New(cfg.Debug))
	defer func() { _ = log.Sync() }()

	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadProducts(db, "assets/products.csv", logger.Named(log, "seed"))

	var scheduler *backup.Scheduler
	if cfg.Backup.Schedule != "" {
		scheduler = backup.NewScheduler(db, cfg.Backup.Dir, logger.Named(log, "backup"))
		if err := scheduler.Start(cfg.Backup.Schedule); err != nil {
			log.Fatal("invalid backup schedule", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	handler := api.New(db, cfg.Secret, logger.Named(log, "api"))
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: handler.Router(cfg.AllowedOrigins),
	}

	go func() {
		log.Info("gastrade server starting", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
