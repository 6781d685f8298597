package config

import (
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"time"

	cerrors "obedard/liquidationworker/pkg/errors"
)

// Config represents the application configuration. It is built once at startup
// and passed into every component at construction; components never read the
// environment themselves.
type Config struct {
	// Target site
	SiteOrigin string
	StartPath  string
	Category   string
	PageParam  string
	StoreParam string

	// Block locator
	MarkerPattern  string
	ContainerTags  []string
	MaxWalkDepth   int
	FingerprintLen int

	// Field extractor
	CurrencySymbol    string
	InStockPattern    string
	OutOfStockPattern string

	// Crawl controller
	DiscountThreshold float64
	MaxPages          int
	FetchDelay        time.Duration
	FetchTimeout      time.Duration
	UserAgent         string
	AcceptLanguage    string

	// Output
	DataDir    string
	PublicDir  string
	StoresFile string

	// Ingestion upload
	IngestURL      string
	IngestEndpoint string
	IngestToken    string
	IngestPublic   string
	UploadDryRun   bool

	// Environment
	Environment string
}

// Store describes one configured store. Loaded once per run, never mutated.
type Store struct {
	StoreID    int    `json:"store_id"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Label      string `json:"label"`
	StoreLabel string `json:"store_label"`
}

// ExplicitLabel returns the configured display label, preferring the
// store_label key over label, or an empty string when neither is set.
func (s Store) ExplicitLabel() string {
	if s.StoreLabel != "" {
		return s.StoreLabel
	}
	return s.Label
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	threshold, _ := strconv.ParseFloat(getEnv("DISCOUNT_THRESHOLD", "50"), 64)
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "300"))
	fetchDelayMs, _ := strconv.Atoi(getEnv("FETCH_DELAY_MS", "1300"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "30"))
	maxWalkDepth, _ := strconv.Atoi(getEnv("MAX_WALK_DEPTH", "6"))
	fingerprintLen, _ := strconv.Atoi(getEnv("FINGERPRINT_LEN", "300"))
	dryRun, _ := strconv.ParseBool(getEnv("UPLOAD_DRY_RUN", "false"))

	return &Config{
		SiteOrigin: getEnv("SITE_ORIGIN", "https://www.canac.ca"),
		StartPath:  getEnv("START_PATH", "/canac/fr/2/c/AUB"),
		Category:   getEnv("CATEGORY", "AUB"),
		PageParam:  getEnv("PAGE_PARAM", "currentPage"),
		StoreParam: getEnv("STORE_PARAM", "magasin"),

		MarkerPattern:  getEnv("MARKER_PATTERN", `(?i)Code produit\s*:`),
		ContainerTags:  []string{"article", "li", "div"},
		MaxWalkDepth:   maxWalkDepth,
		FingerprintLen: fingerprintLen,

		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "$"),
		InStockPattern:    getEnv("IN_STOCK_PATTERN", `(?i)En\s+inventaire`),
		OutOfStockPattern: getEnv("OUT_OF_STOCK_PATTERN", `(?i)Inventaire\s+[ée]puis[ée]`),

		DiscountThreshold: threshold,
		MaxPages:          maxPages,
		FetchDelay:        time.Duration(fetchDelayMs) * time.Millisecond,
		FetchTimeout:      time.Duration(fetchTimeout) * time.Second,
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
		AcceptLanguage: getEnv("ACCEPT_LANGUAGE", "fr-CA,fr;q=0.9,en;q=0.8"),

		DataDir:    getEnv("DATA_DIR", "data"),
		PublicDir:  getEnv("PUBLIC_DIR", "public/canac"),
		StoresFile: getEnv("STORES_FILE", "stores_canac.json"),

		IngestURL:      getEnv("INGEST_URL", ""),
		IngestEndpoint: getEnv("INGEST_ENDPOINT", "/liquidations/import"),
		IngestToken:    getEnv("INGEST_TOKEN", ""),
		IngestPublic:   getEnv("INGEST_PUBLIC", "canac"),
		UploadDryRun:   dryRun,

		Environment: getEnv("LIQUIDATION_ENVIRONMENT", "development"),
	}
}

// Validate ensures the configuration values are coherent
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.SiteOrigin)
	if err != nil || parsed.Host == "" {
		return cerrors.NewConfiguration("site origin must be a valid absolute URL", err)
	}
	if c.StartPath == "" {
		return cerrors.NewConfiguration("start path cannot be empty", nil)
	}
	if c.Category == "" {
		return cerrors.NewConfiguration("category cannot be empty", nil)
	}
	if c.MaxPages <= 0 {
		return cerrors.NewConfiguration("max pages must be positive", nil)
	}
	if c.FetchDelay < 0 {
		return cerrors.NewConfiguration("fetch delay cannot be negative", nil)
	}
	if c.FetchTimeout <= 0 {
		return cerrors.NewConfiguration("fetch timeout must be positive", nil)
	}
	if c.MaxWalkDepth <= 0 {
		return cerrors.NewConfiguration("max walk depth must be positive", nil)
	}
	if c.FingerprintLen <= 0 {
		return cerrors.NewConfiguration("fingerprint length must be positive", nil)
	}
	if c.DiscountThreshold < 0 || c.DiscountThreshold > 100 {
		return cerrors.NewConfiguration("discount threshold must be between 0 and 100", nil)
	}
	if c.DataDir == "" || c.PublicDir == "" {
		return cerrors.NewConfiguration("data and public directories cannot be empty", nil)
	}
	return nil
}

// PageURL builds the catalog page URL for one store and page number
func (c *Config) PageURL(storeID, page int) string {
	u := c.SiteOrigin + c.StartPath
	u += "?" + c.PageParam + "=" + strconv.Itoa(page)
	if c.StoreParam != "" && storeID > 0 {
		u += "&" + c.StoreParam + "=" + strconv.Itoa(storeID)
	}
	return u
}

// LoadStores reads the store list from the configured JSON file, falling back
// to stores.json next to it when the primary file does not exist.
func LoadStores(path string) ([]Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data, err = os.ReadFile("stores.json")
	}
	if err != nil {
		return nil, cerrors.NewConfiguration("missing store list; create it with store_id/city/province", err)
	}

	var stores []Store
	if err := json.Unmarshal(data, &stores); err != nil {
		return nil, cerrors.NewConfiguration("invalid store list", err)
	}
	for _, s := range stores {
		if s.StoreID <= 0 {
			return nil, cerrors.NewConfiguration("store_id must be a positive integer", nil)
		}
	}
	return stores, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
