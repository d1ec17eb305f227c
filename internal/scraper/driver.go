// Package scraper runs the per-country collection batch.
//
// The Driver visits country codes one at a time in list order. For each
// country it fetches the page, reads the header metadata, persists
// metadata.json and then runs every extractor inside its own isolation
// boundary, so one failing table never prevents the others from being
// written. Failures are logged with the country code, the reason and the
// source URL, and the batch always moves on to the next country.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-export-scraper/internal/extractors"
	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/google/uuid"
)

// Config holds the batch inputs
type Config struct {
	URLTemplate  string
	CountryCodes []string
	// Limit caps the number of countries visited; 0 visits all
	Limit int
	// ProgressInterval is how often batch progress is logged
	ProgressInterval time.Duration
}

// DefaultConfig returns the source site template and the full country list
func DefaultConfig() *Config {
	codes := make([]string, len(DefaultCountryCodes))
	copy(codes, DefaultCountryCodes)
	return &Config{
		URLTemplate:      DefaultURLTemplate,
		CountryCodes:     codes,
		ProgressInterval: 10 * time.Second,
	}
}

// Validate checks the batch inputs
func (c *Config) Validate() error {
	if c.URLTemplate == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "url_template", c.URLTemplate, nil)
	}
	if !containsPlaceholder(c.URLTemplate) {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "url_template", c.URLTemplate,
			fmt.Errorf("template must contain %s", CountryCodePlaceholder))
	}
	if len(c.CountryCodes) == 0 {
		return errors.ConfigurationError(errors.CodeMissingConfig, "countries", c.CountryCodes, nil)
	}
	for _, code := range c.CountryCodes {
		if !ValidCountryCode(code) {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "countries", code,
				fmt.Errorf("country codes must be three upper-case letters"))
		}
	}
	if c.Limit < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "limit", c.Limit,
			fmt.Errorf("limit cannot be negative"))
	}
	return nil
}

// Writer persists country artifacts. dataset.Writer implements it.
type Writer interface {
	extractors.Sink
	WriteMetadata(record models.CountryRecord) error
	RemoveCountry(countryCode string) error
	RemoveArtifact(countryCode, name string) error
}

// ExtractorOutcome is the result of one extractor for one country
type ExtractorOutcome struct {
	Extractor models.Extractor
	Records   int
	RowErrors []*errors.RowError
	Err       error
}

// CountryResult is the outcome of one country
type CountryResult struct {
	CountryCode string
	URL         string
	Status      models.CountryStatus
	Reason      error
	Metadata    *models.CountryRecord
	Outcomes    []ExtractorOutcome
	Duration    time.Duration
}

// Complete reports whether every artifact was written
func (r *CountryResult) Complete() bool {
	if r.Status != models.StatusWritten {
		return false
	}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return false
		}
	}
	return true
}

// BatchResult summarizes a Run
type BatchResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Countries []*CountryResult
	Written   int
	Complete  int
	Failed    int
}

// Failures returns the countries that ended in FAILED
func (b *BatchResult) Failures() []*CountryResult {
	var failed []*CountryResult
	for _, c := range b.Countries {
		if c.Status == models.StatusFailed {
			failed = append(failed, c)
		}
	}
	return failed
}

// Driver scrapes countries sequentially
type Driver struct {
	config     *Config
	fetcher    Fetcher
	writer     Writer
	extractors []extractors.Extractor
	logger     logger.Logger
}

// NewDriver creates a Driver. A nil extractor list uses extractors.Default.
func NewDriver(config *Config, fetcher Fetcher, writer Writer, exs []extractors.Extractor, log logger.Logger) (*Driver, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.InternalError("driver setup", fmt.Errorf("fetcher cannot be nil"))
	}
	if writer == nil {
		return nil, errors.InternalError("driver setup", fmt.Errorf("writer cannot be nil"))
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if exs == nil {
		exs = extractors.Default(log)
	}

	return &Driver{
		config:     config,
		fetcher:    fetcher,
		writer:     writer,
		extractors: exs,
		logger:     log.WithComponent("driver"),
	}, nil
}

// Run visits every configured country. Per-country failures are recorded in
// the result and never stop the batch; only a cancelled context does, in
// which case the partial result is returned with the context error.
func (d *Driver) Run(ctx context.Context) (*BatchResult, error) {
	codes := d.config.CountryCodes
	if d.config.Limit > 0 && d.config.Limit < len(codes) {
		codes = codes[:d.config.Limit]
	}

	batch := &BatchResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Countries: make([]*CountryResult, 0, len(codes)),
	}
	log := d.logger.WithField("run_id", batch.RunID)

	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation:   "collect",
		Total:       int64(len(codes)),
		LogInterval: d.config.ProgressInterval,
		Logger:      log,
	})

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			batch.Duration = time.Since(batch.StartedAt)
			log.Warnf("Batch cancelled after %d of %d countries", len(batch.Countries), len(codes))
			return batch, err
		}

		result := d.ScrapeCountry(ctx, code)
		batch.Countries = append(batch.Countries, result)

		switch {
		case result.Status == models.StatusFailed:
			batch.Failed++
		case result.Complete():
			batch.Written++
			batch.Complete++
		default:
			batch.Written++
		}
		progress.Done(result.Status != models.StatusFailed)
	}

	progress.Complete()
	batch.Duration = time.Since(batch.StartedAt)
	log.WithFields(logger.Fields{
		"written":  batch.Written,
		"complete": batch.Complete,
		"failed":   batch.Failed,
	}).Info("Collection finished")
	return batch, nil
}

// ScrapeCountry runs the state machine for one country
func (d *Driver) ScrapeCountry(ctx context.Context, code string) *CountryResult {
	start := time.Now()
	result := &CountryResult{
		CountryCode: code,
		URL:         BuildURL(d.config.URLTemplate, code),
		Status:      models.StatusPending,
	}
	log := d.logger.WithFields(logger.Fields{"country_code": code, "url": result.URL})
	defer func() { result.Duration = time.Since(start) }()

	d.advance(result, models.StatusFetching)
	doc, err := d.fetcher.Fetch(ctx, result.URL)
	if err != nil {
		d.fail(log, result, err)
		return result
	}
	page := &extractors.Page{CountryCode: code, URL: result.URL, Doc: doc}

	record, err := extractors.ParseMetadata(page)
	if err != nil {
		d.fail(log, result, err)
		return result
	}
	result.Metadata = &record
	d.advance(result, models.StatusParsed)

	if err := d.writer.WriteMetadata(record); err != nil {
		d.fail(log, result, err)
		return result
	}

	for _, ex := range d.extractors {
		// a failing extractor must not leave the previous run's file behind
		if name := ex.Name().FileName(); name != "" {
			if err := d.writer.RemoveArtifact(code, name); err != nil {
				log.WithError(err).Warnf("Could not remove stale %s", name)
			}
		}
		outcome := runExtractor(ex, page, d.writer)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Err != nil {
			log.WithFields(logger.Fields{
				"extractor": string(outcome.Extractor),
				"code":      errorCode(outcome.Err),
			}).Warnf("Extractor failed: %v", outcome.Err)
		}
	}

	d.advance(result, models.StatusWritten)
	log.Debugf("Country written in %s", time.Since(start))
	return result
}

// runExtractor is the isolation boundary around a single extractor. A panic
// inside the extractor is converted to an internal error.
func runExtractor(ex extractors.Extractor, page *extractors.Page, sink extractors.Sink) (outcome ExtractorOutcome) {
	outcome.Extractor = ex.Name()
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = errors.InternalError(string(ex.Name())+" extractor",
				fmt.Errorf("panic: %v", r)).
				WithContext("country_code", page.CountryCode)
		}
	}()

	res, err := ex.Extract(page, sink)
	outcome.Records = res.Records
	outcome.RowErrors = res.RowErrors
	outcome.Err = err
	return outcome
}

func (d *Driver) advance(result *CountryResult, next models.CountryStatus) {
	if !result.Status.CanTransition(next) {
		d.logger.Errorf("Invalid status transition %s -> %s for %s", result.Status, next, result.CountryCode)
		result.Reason = errors.InternalError("status transition",
			fmt.Errorf("%s -> %s", result.Status, next))
		result.Status = models.StatusFailed
		return
	}
	result.Status = next
}

// fail marks the country FAILED and removes its directory, so output from an
// earlier run cannot survive into this one.
func (d *Driver) fail(log logger.Logger, result *CountryResult, err error) {
	d.advance(result, models.StatusFailed)
	result.Reason = err
	log.WithField("code", errorCode(err)).Warnf("Country failed: %v", err)

	if rmErr := d.writer.RemoveCountry(result.CountryCode); rmErr != nil {
		log.WithError(rmErr).Warn("Could not remove country directory")
	}
}

func errorCode(err error) string {
	if se, ok := errors.AsScraperError(err); ok {
		return string(se.Code)
	}
	return string(errors.CodeUnexpectedError)
}

func containsPlaceholder(template string) bool {
	return strings.Contains(template, CountryCodePlaceholder)
}
