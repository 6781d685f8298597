package main

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"obedard/liquidationworker/config"
	"obedard/liquidationworker/helpers"
	"obedard/liquidationworker/internal/crawler"
	"obedard/liquidationworker/logger"
	"obedard/liquidationworker/services/aggregator"
	"obedard/liquidationworker/services/runner"
	"obedard/liquidationworker/services/uploader"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default.WithField("run", uuid.NewString())

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	stores, err := config.LoadStores(cfg.StoresFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load store list")
	}
	if len(stores) == 0 {
		log.Fatal().Msg("Store list is empty")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("origin", cfg.SiteOrigin).
		Str("category", cfg.Category).
		Int("stores", len(stores)).
		Float64("threshold", cfg.DiscountThreshold).
		Msg("Starting liquidation run")

	fetcher := helpers.NewPageFetcher(cfg.FetchTimeout, cfg.UserAgent, cfg.AcceptLanguage)
	metrics := crawler.NewMetrics()

	r, err := runner.New(cfg, fetcher, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build runner")
	}

	entries, err := r.RunAll(stores)
	if err != nil {
		log.Fatal().Err(err).Msg("Multi-store run aborted")
	}

	indexPath := filepath.Join(cfg.PublicDir, "stores.json")
	if err := aggregator.WriteIndex(indexPath, entries); err != nil {
		log.Fatal().Err(err).Msg("Failed to write catalog index")
	}
	log.Info().Str("index", indexPath).Int("stores", len(entries)).Msg("Catalog index written")

	if cfg.IngestURL != "" {
		u := uploader.New(cfg.IngestURL, cfg.IngestEndpoint, cfg.IngestToken, cfg.IngestPublic, cfg.UploadDryRun)
		if err := u.UploadAll(entries, cfg.PublicDir); err != nil {
			log.Fatal().Err(err).Msg("Upload aborted")
		}
		log.Info().Int("files", len(entries)).Msg("Upload complete")
	}

	log.Info().Msg("Done")
}
