package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"oportunidades/internal/api"
	"oportunidades/internal/pkg/logger"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/database"
	"oportunidades/internal/platform/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)
	zerolog.DefaultContextLogger = &log.Logger

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		n, err := database.SeedCategories(ctx, db, cfg.Categories)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed categories")
		}
		log.Info().Int("inserted", n).Msg("categories seeded")
	}

	images, err := storage.NewImageStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure image storage")
	}
	if images == nil {
		log.Info().Msg("image uploads disabled: storage.bucket not set")
	}

	deps := api.NewDependencies(db, cfg, images)
	defer deps.RateLimiter.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.Server.Mode).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
