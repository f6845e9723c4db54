package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mflix-backend/internal/config"
	"mflix-backend/internal/database"
	"mflix-backend/internal/handlers"
	"mflix-backend/internal/logging"
	"mflix-backend/internal/mailer"
	"mflix-backend/internal/middleware"
	"mflix-backend/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Development(), cfg.Debug())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName, logger)
	if err != nil {
		logger.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer db.Client().Disconnect(context.Background())

	store := repository.NewUserStore(db, logger, cfg.DBTimeout)
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warnw("failed to create indexes", "error", err)
	}

	var m mailer.Mailer
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, welcome emails will only be logged")
		m = mailer.NewLogMailer(logger)
	} else {
		m = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail, logger)
	}

	router := handlers.NewRouter(
		handlers.NewAuthHandler(store, m, cfg.JWTSecret, cfg.TokenTTL, logger),
		handlers.NewUserHandler(store, logger),
		middleware.JWTAuth(cfg.JWTSecret, store, logger),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("mflix backend starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
