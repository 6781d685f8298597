package crawler

import (
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obedard/liquidationworker/logger"
	cerrors "obedard/liquidationworker/pkg/errors"
)

type stubPage struct {
	html string
	err  error
}

type stubFetcher struct {
	pages []stubPage
	calls int
}

func (s *stubFetcher) Fetch(url string) (io.Reader, error) {
	if s.calls >= len(s.pages) {
		return nil, cerrors.NewHTTPStatus(url, 404)
	}
	page := s.pages[s.calls]
	s.calls++
	if page.err != nil {
		return nil, page.err
	}
	return strings.NewReader(page.html), nil
}

func productBlock(sku, sale, regular string) string {
	prices := ""
	if sale != "" {
		prices += `<span>` + sale + `</span>`
	}
	if regular != "" {
		prices += `<span>` + regular + `</span>`
	}
	return `<li><a href="/p/` + sku + `">Produit ` + sku + `</a>` +
		`<span>Code produit : ` + sku + `</span>` + prices + `</li>`
}

func pageHTML(blocks ...string) string {
	return `<html><body><ul>` + strings.Join(blocks, "") + `</ul></body></html>`
}

func newTestController(t *testing.T, fetcher Fetcher, maxPages int) *Controller {
	t.Helper()
	return NewController(
		fetcher,
		newTestLocator(t),
		newTestExtractor(t),
		DiscountFilter{Threshold: 50},
		func(storeID, page int) string { return "https://example.com/c/AUB?currentPage=" + strconv.Itoa(page) },
		maxPages,
		0,
		NewMetrics(),
		logger.ForStore(39),
	)
}

func newRunSession(t *testing.T) *CrawlSession {
	t.Helper()
	session, err := NewSession(39, "AUB")
	require.NoError(t, err)
	return session
}

func TestControllerStopsOnBlockedResponse(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{err: cerrors.NewBlocked("https://example.com", 403)},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopBlocked, result.Reason)
	assert.Equal(t, 1, result.Pages)
	assert.Empty(t, result.Records)
}

func TestControllerStopsOnTimeout(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{err: cerrors.NewNetwork("https://example.com", "request timed out", nil)},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopTimeout, result.Reason)
	assert.Equal(t, 1, result.Pages)
}

func TestControllerStopsOnHTTPError(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{err: cerrors.NewHTTPStatus("https://example.com", 500)},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopHTTPError, result.Reason)
	assert.Equal(t, 1, result.Pages)
}

func TestControllerStopsWhenPageExhausted(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{html: pageHTML(
			productBlock("A-1", "150,00 $", "395,00 $"),
			productBlock("A-2", "100,00 $", "200,00 $"),
			productBlock("A-3", "349,00 $", "395,00 $"),
		)},
		{html: pageHTML()},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopExhausted, result.Reason)
	assert.Equal(t, 2, result.Pages)
	// two qualifying records kept, the 11.65% one filtered out
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Produit A-1", result.Records[0].Name)
	assert.Equal(t, "Produit A-2", result.Records[1].Name)
}

func TestControllerAdvancesPageByOne(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{html: pageHTML(productBlock("A-1", "150,00 $", "395,00 $"))},
		{html: pageHTML(productBlock("B-1", "100,00 $", "200,00 $"))},
		{html: pageHTML()},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopExhausted, result.Reason)
	assert.Equal(t, 3, result.Pages)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 3, fetcher.calls)
}

func TestControllerStopsAtMaxPages(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{html: pageHTML(productBlock("A-1", "150,00 $", "395,00 $"))},
		{html: pageHTML(productBlock("B-1", "150,00 $", "395,00 $"))},
		{html: pageHTML(productBlock("C-1", "150,00 $", "395,00 $"))},
	}}

	result := newTestController(t, fetcher, 2).Run(newRunSession(t))

	assert.Equal(t, StopMaxPages, result.Reason)
	assert.Equal(t, 2, result.Pages)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 2, fetcher.calls)
}

func TestControllerCollapsesRecordsRepeatedAcrossPages(t *testing.T) {
	repeated := productBlock("A-1", "150,00 $", "395,00 $")
	fetcher := &stubFetcher{pages: []stubPage{
		{html: pageHTML(repeated)},
		{html: pageHTML(repeated)},
		{html: pageHTML()},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopExhausted, result.Reason)
	assert.Len(t, result.Records, 1)
}

func TestControllerKeepsCollectedRecordsOnTransportStop(t *testing.T) {
	fetcher := &stubFetcher{pages: []stubPage{
		{html: pageHTML(productBlock("A-1", "150,00 $", "395,00 $"))},
		{err: cerrors.NewBlocked("https://example.com", 403)},
	}}

	result := newTestController(t, fetcher, 10).Run(newRunSession(t))

	assert.Equal(t, StopBlocked, result.Reason)
	assert.Equal(t, 2, result.Pages)
	assert.Len(t, result.Records, 1)
}
