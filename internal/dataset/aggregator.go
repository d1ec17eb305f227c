package dataset

import (
	"fmt"
	"hash/fnv"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/logger"
)

// Aggregator builds the top-level metadata.json from the country directories
type Aggregator struct {
	reader *Reader
	writer *Writer
	logger logger.Logger
}

// NewAggregator creates an Aggregator over a dataset root
func NewAggregator(reader *Reader, writer *Writer, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Aggregator{reader: reader, writer: writer, logger: log.WithComponent("aggregator")}
}

// Build returns one summary per country directory. Countries named in order
// come first in that order; directories not in order follow sorted by code.
func (a *Aggregator) Build(order []string) ([]models.CountrySummary, error) {
	present, err := a.reader.Countries()
	if err != nil {
		return nil, err
	}

	remaining := make(map[string]bool, len(present))
	for _, code := range present {
		remaining[code] = true
	}

	codes := make([]string, 0, len(present))
	for _, code := range order {
		if remaining[code] {
			codes = append(codes, code)
			delete(remaining, code)
		}
	}
	for _, code := range present {
		if remaining[code] {
			codes = append(codes, code)
		}
	}

	summaries := make([]models.CountrySummary, 0, len(codes))
	for _, code := range codes {
		record, err := a.reader.ReadMetadata(code)
		if err != nil {
			a.logger.WithField("country_code", code).WithError(err).Warn("Skipping country without readable metadata")
			continue
		}
		summaries = append(summaries, models.NewCountrySummary(code, record, ColorFor(code)))
	}
	return summaries, nil
}

// Write builds the summary and persists it as the top-level metadata.json
func (a *Aggregator) Write(order []string) ([]models.CountrySummary, error) {
	summaries, err := a.Build(order)
	if err != nil {
		return nil, err
	}
	if err := a.writer.WriteSummaries(summaries); err != nil {
		return nil, err
	}
	a.logger.Infof("Wrote summary for %d countries", len(summaries))
	return summaries, nil
}

// Load reads the persisted top-level metadata.json
func (a *Aggregator) Load() ([]models.CountrySummary, error) {
	return a.reader.ReadSummaries()
}

// ColorFor derives a stable display color from a country code
func ColorFor(countryCode string) string {
	h := fnv.New32a()
	h.Write([]byte(countryCode))
	return fmt.Sprintf("#%06x", h.Sum32()&0xffffff)
}
