package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/camroll/gallery/application"
	"github.com/dfryer1193/camroll/gallery/persistence"
	"github.com/dfryer1193/camroll/internal/config"
	"github.com/dfryer1193/camroll/internal/rest"
	"github.com/dfryer1193/camroll/shared/db/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := config.SetupLogging(cfg.LogLevel, cfg.LogPretty); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	database := sqlite.NewSQLiteDB(&cfg.SQLite)
	if err := database.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	store := application.NewRecordStore(persistence.NewRecordRepository(database.DB()))
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to gracefully close record store")
		}
	}()

	captureService := application.NewCaptureService(store, application.RetryPolicy{
		Retries:  cfg.InsertRetries,
		Interval: cfg.InsertRetryInterval,
	})
	defer func() {
		if err := captureService.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to gracefully close capture service")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	r := rest.NewRouter(store, captureService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	// Streams are held open until the store closes them.
	srv.RegisterOnShutdown(func() {
		store.Close()
	})

	go func() {
		log.Info().Msg("Starting server on port :" + fmt.Sprint(cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
