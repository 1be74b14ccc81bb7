package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"oportunidades/internal/pkg/logger"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down (down drops every table)")
	seed := flag.Bool("seed", true, "Seed categories after migrating up")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()

	switch *direction {
	case "up":
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		if *seed {
			n, err := database.SeedCategories(ctx, db, cfg.Categories)
			if err != nil {
				log.Fatal().Err(err).Msg("seeding failed")
			}
			log.Info().Int("inserted", n).Msg("categories seeded")
		}
	case "down":
		if !cfg.Server.Debug() {
			log.Fatal().Msg("refusing to drop tables outside development mode")
		}
		if err := database.Reset(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("reset failed")
		}
	default:
		log.Fatal().Str("direction", *direction).Msg("invalid direction: must be 'up' or 'down'")
	}

	fmt.Println("Migration completed successfully")
}
