package main

import (
	"context"
	"fmt"
	"os"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/config"
	"github.com/eldos/workmarket/internal/db"
	"github.com/eldos/workmarket/internal/export"
	"github.com/eldos/workmarket/internal/fixtures"
	httphandler "github.com/eldos/workmarket/internal/http"
	"github.com/eldos/workmarket/internal/logger"
	"github.com/eldos/workmarket/internal/resource"
	"github.com/eldos/workmarket/internal/schema"
	"github.com/eldos/workmarket/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	registry := schema.Default()
	database, err := db.New(cfg, log, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	store := storage.NewStore(database)
	cdc := codec.New(codec.Options{SortFields: cfg.JSON.SortFields})

	if cfg.SeedFixtures {
		if err := fixtures.Seed(context.Background(), registry, cdc, store, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed fixtures")
		}
	}

	resources := resource.NewMapper(registry, store, cdc)
	handler := httphandler.NewHandler(
		resources,
		export.NewExcelGenerator(cdc),
		export.NewPDFGenerator(cdc),
		log,
	)
	router := httphandler.NewRouter(handler, log, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting workmarket service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
