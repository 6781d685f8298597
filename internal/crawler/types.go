package crawler

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Availability classifies the stock state of a product
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityUnknown    Availability = "unknown"
)

// ProductRecord represents one extracted catalog item. Prices and discount are
// nil when the source markup did not carry usable data; discount_pct is set
// only when both prices are present, the regular price is positive, and the
// sale price does not exceed it.
type ProductRecord struct {
	Name         string       `json:"name"`
	SKU          *string      `json:"sku"`
	PriceRegular *float64     `json:"price_regular"`
	PriceSale    *float64     `json:"price_sale"`
	DiscountPct  *float64     `json:"discount_pct"`
	Availability Availability `json:"availability"`
	URL          string       `json:"url"`
	Image        *string      `json:"image"`
	RawText      string       `json:"raw_text"`
}

// StopReason records why a crawl terminated. None of these are errors; every
// stop is a graceful end of pagination.
type StopReason string

const (
	// StopTimeout: the page fetch hit a transport-level timeout
	StopTimeout StopReason = "timeout"
	// StopBlocked: the site answered with an access-denial status
	StopBlocked StopReason = "blocked"
	// StopHTTPError: any other non-success response
	StopHTTPError StopReason = "http_error"
	// StopExhausted: a fetched page carried zero product blocks
	StopExhausted StopReason = "exhausted"
	// StopMaxPages: the configured page ceiling was reached
	StopMaxPages StopReason = "max_pages"
)

// Block is one candidate product subtree together with its dedup fingerprint
type Block struct {
	Sel         *goquery.Selection
	Fingerprint string
}

// CrawlSession holds the state of exactly one store's crawl. It lives for one
// controller run and is never persisted; every invocation starts at page 1.
type CrawlSession struct {
	ID       string
	StoreID  int
	Category string
	Page     int
	Records  []ProductRecord
	Reason   StopReason

	seen *lru.Cache[string, struct{}]
}

// NewSession creates a session for one store crawl. The seen-fingerprint cache
// collapses records that repeat across page boundaries.
func NewSession(storeID int, category string) (*CrawlSession, error) {
	seen, err := lru.New[string, struct{}](4096)
	if err != nil {
		return nil, err
	}
	return &CrawlSession{
		ID:       uuid.NewString(),
		StoreID:  storeID,
		Category: category,
		Page:     1,
		seen:     seen,
	}, nil
}

// markSeen records a fingerprint and reports whether it was already present
func (s *CrawlSession) markSeen(fingerprint string) bool {
	if _, ok := s.seen.Get(fingerprint); ok {
		return true
	}
	s.seen.Add(fingerprint, struct{}{})
	return false
}

// CrawlResult is the typed outcome of one store crawl
type CrawlResult struct {
	SessionID string
	StoreID   int
	Category  string
	Pages     int
	Records   []ProductRecord
	Reason    StopReason
}

// Fetcher retrieves one page of markup. Implementations classify failures into
// pkg/errors types so the controller can derive the stop reason.
type Fetcher interface {
	Fetch(url string) (io.Reader, error)
}
