package crawler

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"obedard/liquidationworker/logger"
	cerrors "obedard/liquidationworker/pkg/errors"
)

// Controller drives the sequential pagination loop for one store: fetch a
// page, locate and extract blocks, filter, then either continue to the next
// page or stop. Every stop reason is a graceful termination, not an error.
// The controller is not resumable; a new session always starts at page 1.
type Controller struct {
	fetcher   Fetcher
	locator   *Locator
	extractor *Extractor
	filter    DiscountFilter
	pageURL   func(storeID, page int) string
	maxPages  int
	delay     time.Duration
	metrics   *Metrics
	log       *logger.Logger
}

// NewController wires the pipeline components for one run
func NewController(
	fetcher Fetcher,
	locator *Locator,
	extractor *Extractor,
	filter DiscountFilter,
	pageURL func(storeID, page int) string,
	maxPages int,
	delay time.Duration,
	metrics *Metrics,
	log *logger.Logger,
) *Controller {
	return &Controller{
		fetcher:   fetcher,
		locator:   locator,
		extractor: extractor,
		filter:    filter,
		pageURL:   pageURL,
		maxPages:  maxPages,
		delay:     delay,
		metrics:   metrics,
		log:       log,
	}
}

// Run executes the crawl until a stop condition fires. Already-collected
// records are always part of the result, whatever the stop reason.
func (c *Controller) Run(session *CrawlSession) *CrawlResult {
	for {
		url := c.pageURL(session.StoreID, session.Page)

		body, err := c.fetcher.Fetch(url)
		if err != nil {
			reason := stopReasonFor(err)
			c.log.Warn().
				Int("page", session.Page).
				Str("reason", string(reason)).
				Err(err).
				Msg("Fetch failed, stopping crawl")
			return c.finish(session, reason)
		}
		c.metrics.IncPages()

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			perr := cerrors.NewParsing(url, "failed to parse page markup", err)
			c.log.Warn().Int("page", session.Page).Err(perr).Msg("Unusable page, stopping crawl")
			return c.finish(session, StopHTTPError)
		}

		blocks := c.locator.Find(doc)
		if len(blocks) == 0 {
			c.log.Info().Int("page", session.Page).Msg("No product blocks detected, catalog exhausted")
			return c.finish(session, StopExhausted)
		}
		c.metrics.AddBlocks(len(blocks))

		kept := 0
		for _, block := range blocks {
			// collapse records repeated across page boundaries
			if session.markSeen(block.Fingerprint) {
				continue
			}
			record := c.extractor.Extract(block)
			if record == nil {
				continue
			}
			c.metrics.IncExtracted()
			if !c.filter.Keep(*record) {
				continue
			}
			session.Records = append(session.Records, *record)
			c.metrics.IncKept()
			kept++
		}

		c.log.Info().
			Int("page", session.Page).
			Int("blocks", len(blocks)).
			Int("kept", kept).
			Msg("Page processed")

		if session.Page >= c.maxPages {
			return c.finish(session, StopMaxPages)
		}

		// politeness delay; pacing only, never a retry mechanism
		time.Sleep(c.delay)
		session.Page++
	}
}

func (c *Controller) finish(session *CrawlSession, reason StopReason) *CrawlResult {
	session.Reason = reason
	c.metrics.IncStop(reason)
	return &CrawlResult{
		SessionID: session.ID,
		StoreID:   session.StoreID,
		Category:  session.Category,
		Pages:     session.Page,
		Records:   session.Records,
		Reason:    reason,
	}
}

// stopReasonFor maps a classified fetch error onto the crawl stop reason
func stopReasonFor(err error) StopReason {
	switch cerrors.TypeOf(err) {
	case cerrors.ErrorTypeNetwork:
		return StopTimeout
	case cerrors.ErrorTypeBlocked:
		return StopBlocked
	default:
		return StopHTTPError
	}
}
