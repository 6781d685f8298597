// Package runner executes one crawl per configured store, exports the
// per-store artifacts, and hands them to normalization. Stores are processed
// strictly one at a time; artifact handling in a shared output directory is
// only safe because of that sequential order.
package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"obedard/liquidationworker/config"
	"obedard/liquidationworker/internal/crawler"
	"obedard/liquidationworker/logger"
	cerrors "obedard/liquidationworker/pkg/errors"
	"obedard/liquidationworker/services/aggregator"
	"obedard/liquidationworker/services/export"
	"obedard/liquidationworker/services/normalize"
)

// StoreResult is the typed outcome of one store's crawl and export
type StoreResult struct {
	Store         config.Store
	Crawl         *crawler.CrawlResult
	JSONPath      string
	CSVPath       string
	PublishedPath string
	Entry         aggregator.StoreIndexEntry
}

// Runner drives the multi-store run
type Runner struct {
	cfg       *config.Config
	fetcher   crawler.Fetcher
	locator   *crawler.Locator
	extractor *crawler.Extractor
	metrics   *crawler.Metrics
	log       *logger.Logger
}

// New builds a runner; the locator and extractor are compiled once and shared
// across stores.
func New(cfg *config.Config, fetcher crawler.Fetcher, metrics *crawler.Metrics) (*Runner, error) {
	locator, err := crawler.NewLocator(cfg.MarkerPattern, cfg.ContainerTags, cfg.MaxWalkDepth, cfg.FingerprintLen)
	if err != nil {
		return nil, cerrors.NewConfiguration("invalid marker pattern", err)
	}
	extractor, err := crawler.NewExtractor(cfg.SiteOrigin, cfg.MarkerPattern, cfg.CurrencySymbol, cfg.InStockPattern, cfg.OutOfStockPattern)
	if err != nil {
		return nil, cerrors.NewConfiguration("invalid extractor patterns", err)
	}
	return &Runner{
		cfg:       cfg,
		fetcher:   fetcher,
		locator:   locator,
		extractor: extractor,
		metrics:   metrics,
		log:       logger.ForRunner(),
	}, nil
}

// RunAll processes every configured store in order and returns the catalog
// index entries. A store whose crawl stops early still yields its collected
// records; a store whose structured artifact is missing aborts the whole run.
func (r *Runner) RunAll(stores []config.Store) ([]aggregator.StoreIndexEntry, error) {
	entries := make([]aggregator.StoreIndexEntry, 0, len(stores))
	for _, store := range stores {
		result, err := r.RunStore(store)
		if err != nil {
			return nil, err
		}
		entries = append(entries, result.Entry)
	}
	return entries, nil
}

// RunStore crawls one store, writes its artifacts, and normalizes the
// structured export into the published directory.
func (r *Runner) RunStore(store config.Store) (*StoreResult, error) {
	r.log.Info().
		Int("store", store.StoreID).
		Str("city", store.City).
		Str("province", store.Province).
		Msg("Starting store crawl")

	session, err := crawler.NewSession(store.StoreID, r.cfg.Category)
	if err != nil {
		return nil, cerrors.NewConfiguration("failed to create crawl session", err)
	}

	controller := crawler.NewController(
		r.fetcher,
		r.locator,
		r.extractor,
		crawler.DiscountFilter{Threshold: r.cfg.DiscountThreshold},
		r.cfg.PageURL,
		r.cfg.MaxPages,
		r.cfg.FetchDelay,
		r.metrics,
		logger.ForStore(store.StoreID),
	)
	crawlResult := controller.Run(session)

	base := fmt.Sprintf("%s_store%d_%s_liquidation", r.cfg.IngestPublic, store.StoreID, r.cfg.Category)
	jsonPath := filepath.Join(r.cfg.DataDir, base+".json")
	csvPath := filepath.Join(r.cfg.DataDir, base+".csv")

	if err := export.WriteJSON(jsonPath, crawlResult.Records); err != nil {
		return nil, err
	}
	if err := export.WriteCSV(csvPath, crawlResult.Records); err != nil {
		// the tabular companion is secondary; its absence is not structural
		r.log.Warn().Int("store", store.StoreID).Err(err).Msg("Tabular export failed, continuing")
	}

	if err := r.locateArtifacts(store.StoreID, jsonPath, csvPath); err != nil {
		return nil, err
	}

	entry := aggregator.Entry(store.StoreID, store.City, store.Province, store.ExplicitLabel(), r.cfg.Category, r.cfg.IngestPublic)
	published := filepath.Join(r.cfg.PublicDir, filepath.Base(entry.FilePath))
	if err := normalize.File(jsonPath, published, store.StoreID, entry.Label); err != nil {
		return nil, err
	}

	r.log.Info().
		Int("store", store.StoreID).
		Str("reason", string(crawlResult.Reason)).
		Int("pages", crawlResult.Pages).
		Int("records", len(crawlResult.Records)).
		Str("published", published).
		Msg("Store crawl complete")

	return &StoreResult{
		Store:         store,
		Crawl:         crawlResult,
		JSONPath:      jsonPath,
		CSVPath:       csvPath,
		PublishedPath: published,
		Entry:         entry,
	}, nil
}

// locateArtifacts verifies the crawl actually produced its output. A missing
// structured export is a structural failure that aborts the run; a missing
// tabular companion is only worth a warning.
func (r *Runner) locateArtifacts(storeID int, jsonPath, csvPath string) error {
	if _, err := os.Stat(jsonPath); err != nil {
		return cerrors.NewExport(jsonPath, fmt.Sprintf("no structured export found for store %d in %s", storeID, r.cfg.DataDir), err)
	}
	if _, err := os.Stat(csvPath); err != nil {
		r.log.Warn().Int("store", storeID).Str("path", csvPath).Msg("No tabular export found, continuing")
	}
	return nil
}
