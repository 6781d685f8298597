package helpers

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	cerrors "obedard/liquidationworker/pkg/errors"
)

// PageFetcher issues sequential GET requests with browser-like headers and
// converts responses to UTF-8. Non-success statuses are classified into typed
// errors so the crawl controller can pick the matching stop reason.
type PageFetcher struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
}

// NewPageFetcher creates a fetcher with the given request timeout
func NewPageFetcher(timeout time.Duration, userAgent, acceptLanguage string) *PageFetcher {
	return &PageFetcher{
		client:         &http.Client{Timeout: timeout},
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
	}
}

// Fetch sends an HTTP GET request, classifies the outcome, and returns the
// body as a UTF-8 io.Reader.
func (f *PageFetcher) Fetch(url string) (io.Reader, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, cerrors.NewNetwork(url, "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.acceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, cerrors.NewNetwork(url, "request timed out", err)
		}
		return nil, cerrors.NewNetwork(url, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// 403 and 429 commonly indicate anti-automation blocking
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, cerrors.NewBlocked(url, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, cerrors.NewHTTPStatus(url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cerrors.NewNetwork(url, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, cerrors.NewNetwork(url, "failed to read converted UTF-8 body", err)
	}

	return &buf, nil
}
