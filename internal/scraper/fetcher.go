package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang-export-scraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the collector to the source site
const DefaultUserAgent = "export-scraper/1.0 (+https://github.com/golang-export-scraper)"

// Fetcher retrieves and parses one country page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// FetcherConfig configures an HTTPFetcher
type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
	// RatePerSecond caps request starts; 0 disables the limiter
	RatePerSecond float64
	Burst         int
}

// DefaultFetcherConfig returns a 30 second timeout with no rate limit
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:   30 * time.Second,
		UserAgent: DefaultUserAgent,
		Burst:     1,
	}
}

// HTTPFetcher fetches pages over HTTP. It never retries.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher
func NewHTTPFetcher(config FetcherConfig) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: config.Timeout},
		userAgent: config.UserAgent,
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if config.RatePerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), burst)
	}
	return f
}

// Fetch implements Fetcher. Transport errors, non-2xx responses and bodies
// that cannot be parsed as HTML are reported as fetch failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, errors.FetchFailure(errors.CodeFetchFailed, url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.FetchFailure(errors.CodeFetchFailed, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.FetchFailure(errors.CodeFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.FetchFailure(errors.CodeUnexpectedStatus, url,
			fmt.Errorf("status %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.FetchFailure(errors.CodeUnparseableContent, url, err)
	}
	return doc, nil
}
