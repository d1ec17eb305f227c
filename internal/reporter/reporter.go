// Package reporter renders the outcome of a collection batch.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: one row per visited country for spreadsheet applications
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateReport(batch, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/internal/scraper"
	"golang-export-scraper/pkg/errors"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeRowErrors lists skipped table rows in console and JSON output
	IncludeRowErrors bool `json:"include_row_errors"`
	// MaxRowErrors caps the row errors listed per country; 0 lists all
	MaxRowErrors int `json:"max_row_errors"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a console report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeRowErrors: true,
		MaxRowErrors:     10,
		CSVDelimiter:     ',',
		CSVHeaders:       true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report_format", c.Format,
			fmt.Errorf("valid formats: console, json, csv"))
	}
	if c.MaxRowErrors < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "max_row_errors", c.MaxRowErrors,
			fmt.Errorf("cannot be negative"))
	}
	return nil
}

// ReportGenerator generates batch reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the report for batch to writer
func (rg *ReportGenerator) GenerateReport(batch *scraper.BatchResult, writer io.Writer) error {
	if batch == nil {
		return errors.InternalError("report generation", fmt.Errorf("batch result cannot be nil"))
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(batch, writer)
	case FormatJSON:
		return rg.generateJSONReport(batch, writer)
	case FormatCSV:
		return rg.generateCSVReport(batch, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(batch *scraper.BatchResult, writer io.Writer) error {
	fmt.Fprintf(writer, "COLLECTION REPORT\n")
	fmt.Fprintf(writer, "Run: %s\n", batch.RunID)
	fmt.Fprintf(writer, "Started: %s\n", batch.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration: %v\n\n", batch.Duration.Round(time.Millisecond))

	visited := len(batch.Countries)
	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "  Visited:  %d\n", visited)
	fmt.Fprintf(writer, "  Written:  %d (%.1f%%)\n", batch.Written, percentage(batch.Written, visited))
	fmt.Fprintf(writer, "  Complete: %d (%.1f%%)\n", batch.Complete, percentage(batch.Complete, visited))
	fmt.Fprintf(writer, "  Failed:   %d (%.1f%%)\n", batch.Failed, percentage(batch.Failed, visited))

	if failures := batch.Failures(); len(failures) > 0 {
		fmt.Fprintf(writer, "\n=== FAILED COUNTRIES ===\n")
		for _, c := range failures {
			fmt.Fprintf(writer, "  %-4s %-20s %v\n", c.CountryCode, errorCode(c.Reason), c.Reason)
			fmt.Fprintf(writer, "       %s\n", c.URL)
		}
	}

	var partial []*scraper.CountryResult
	for _, c := range batch.Countries {
		if c.Status == models.StatusWritten && !c.Complete() {
			partial = append(partial, c)
		}
	}
	if len(partial) > 0 {
		fmt.Fprintf(writer, "\n=== EXTRACTOR FAILURES ===\n")
		for _, c := range partial {
			for _, o := range c.Outcomes {
				if o.Err != nil {
					fmt.Fprintf(writer, "  %-4s %-8s %v\n", c.CountryCode, o.Extractor, o.Err)
				}
			}
		}
	}

	if rg.config.IncludeRowErrors && countRowErrors(batch) > 0 {
		fmt.Fprintf(writer, "\n=== SKIPPED ROWS ===\n")
		for _, c := range batch.Countries {
			for _, o := range c.Outcomes {
				rows := rg.limitRowErrors(o.RowErrors)
				for _, re := range rows {
					fmt.Fprintf(writer, "  %-4s %v\n", c.CountryCode, re)
				}
				if len(rows) < len(o.RowErrors) {
					fmt.Fprintf(writer, "  %-4s ... and %d more in %s\n", c.CountryCode, len(o.RowErrors)-len(rows), o.Extractor)
				}
			}
		}
	}

	return nil
}

type jsonReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS int64         `json:"duration_ms"`
	Summary    jsonSummary   `json:"summary"`
	Countries  []jsonCountry `json:"countries"`
}

type jsonSummary struct {
	Visited  int `json:"visited"`
	Written  int `json:"written"`
	Complete int `json:"complete"`
	Failed   int `json:"failed"`
}

type jsonCountry struct {
	CountryCode string          `json:"country_code"`
	URL         string          `json:"url"`
	Status      string          `json:"status"`
	Complete    bool            `json:"complete"`
	ErrorCode   string          `json:"error_code,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
	Extractors  []jsonExtractor `json:"extractors,omitempty"`
}

type jsonExtractor struct {
	Extractor string               `json:"extractor"`
	Records   int                  `json:"records"`
	Error     string               `json:"error,omitempty"`
	RowErrors []*errors.RowContext `json:"row_errors,omitempty"`
	Skipped   int                  `json:"skipped_rows"`
}

func (rg *ReportGenerator) generateJSONReport(batch *scraper.BatchResult, writer io.Writer) error {
	report := jsonReport{
		RunID:      batch.RunID,
		StartedAt:  batch.StartedAt,
		DurationMS: batch.Duration.Milliseconds(),
		Summary: jsonSummary{
			Visited:  len(batch.Countries),
			Written:  batch.Written,
			Complete: batch.Complete,
			Failed:   batch.Failed,
		},
		Countries: make([]jsonCountry, 0, len(batch.Countries)),
	}

	for _, c := range batch.Countries {
		jc := jsonCountry{
			CountryCode: c.CountryCode,
			URL:         c.URL,
			Status:      string(c.Status),
			Complete:    c.Complete(),
			DurationMS:  c.Duration.Milliseconds(),
		}
		if c.Reason != nil {
			jc.ErrorCode = errorCode(c.Reason)
			jc.Reason = c.Reason.Error()
		}
		for _, o := range c.Outcomes {
			je := jsonExtractor{Extractor: string(o.Extractor), Records: o.Records, Skipped: len(o.RowErrors)}
			if o.Err != nil {
				je.Error = o.Err.Error()
			}
			if rg.config.IncludeRowErrors {
				for _, re := range rg.limitRowErrors(o.RowErrors) {
					je.RowErrors = append(je.RowErrors, re.Row)
				}
			}
			jc.Extractors = append(jc.Extractors, je)
		}
		report.Countries = append(report.Countries, jc)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(report)
}

// CSVHeaders are the columns of the CSV report
var CSVHeaders = []string{
	"Country_Code",
	"Status",
	"Complete",
	"Items",
	"Yearly",
	"Monthly",
	"Skipped_Rows",
	"Error_Code",
	"Reason",
	"URL",
}

func (rg *ReportGenerator) generateCSVReport(batch *scraper.BatchResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(CSVHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, c := range batch.Countries {
		records := map[models.Extractor]string{}
		skipped := 0
		var reasons, codes []string
		if c.Reason != nil {
			reasons = append(reasons, c.Reason.Error())
			codes = append(codes, errorCode(c.Reason))
		}
		for _, o := range c.Outcomes {
			skipped += len(o.RowErrors)
			if o.Err != nil {
				reasons = append(reasons, fmt.Sprintf("%s: %v", o.Extractor, o.Err))
				codes = append(codes, errorCode(o.Err))
				continue
			}
			records[o.Extractor] = strconv.Itoa(o.Records)
		}

		record := []string{
			c.CountryCode,
			string(c.Status),
			strconv.FormatBool(c.Complete()),
			records[models.ExtractorItems],
			records[models.ExtractorYearly],
			records[models.ExtractorMonthly],
			strconv.Itoa(skipped),
			strings.Join(codes, ";"),
			strings.Join(reasons, "; "),
			c.URL,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write country record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (rg *ReportGenerator) limitRowErrors(rows []*errors.RowError) []*errors.RowError {
	if rg.config.MaxRowErrors > 0 && len(rows) > rg.config.MaxRowErrors {
		return rows[:rg.config.MaxRowErrors]
	}
	return rows
}

func countRowErrors(batch *scraper.BatchResult) int {
	n := 0
	for _, c := range batch.Countries {
		for _, o := range c.Outcomes {
			n += len(o.RowErrors)
		}
	}
	return n
}

func errorCode(err error) string {
	if se, ok := errors.AsScraperError(err); ok {
		return string(se.Code)
	}
	return string(errors.CodeUnexpectedError)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
