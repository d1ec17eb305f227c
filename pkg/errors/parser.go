package errors

import (
	"fmt"
	"strings"
)

// RowContext locates a failed row inside an extracted table
type RowContext struct {
	CountryCode string `json:"country_code"`
	Extractor   string `json:"extractor"`
	Row         int    `json:"row"`
	Column      int    `json:"column"`
	Value       string `json:"value"`
}

// RowError is a failure confined to a single table row. The extractor that
// raised it keeps going with the next row.
type RowError struct {
	*ScraperError
	Row *RowContext `json:"row"`
}

// Error implements the error interface with location details
func (e *RowError) Error() string {
	if e.Row == nil {
		return e.ScraperError.Error()
	}
	return fmt.Sprintf("%s at %s row %d column %d", e.ScraperError.Error(), e.Row.Extractor, e.Row.Row, e.Row.Column)
}

// Unwrap exposes the underlying ScraperError
func (e *RowError) Unwrap() error {
	return e.ScraperError
}

// NewRowError attaches a row location to a ScraperError
func NewRowError(row *RowContext, cause *ScraperError) *RowError {
	if cause == nil {
		cause = New(CategoryParse, CodeInvalidData, "invalid row")
	}
	if row != nil {
		cause.WithContext("country_code", row.CountryCode).
			WithContext("extractor", row.Extractor).
			WithContext("row", row.Row).
			WithContext("column", row.Column)
	}
	return &RowError{ScraperError: cause, Row: row}
}

// RowErrorCollector collects row errors during extraction. Past its limit it
// only counts what it drops.
type RowErrorCollector struct {
	errors    []*RowError
	maxErrors int
	dropped   int
}

// NewRowErrorCollector creates a collector; maxErrors <= 0 means unlimited
func NewRowErrorCollector(maxErrors int) *RowErrorCollector {
	return &RowErrorCollector{
		errors:    make([]*RowError, 0),
		maxErrors: maxErrors,
	}
}

// Add records err and reports whether it was kept. Extraction carries on
// either way.
func (c *RowErrorCollector) Add(err *RowError) bool {
	if err == nil {
		return false
	}
	if c.maxErrors > 0 && len(c.errors) >= c.maxErrors {
		c.dropped++
		return false
	}
	c.errors = append(c.errors, err)
	return true
}

// Errors returns the kept row errors in row order
func (c *RowErrorCollector) Errors() []*RowError {
	return c.errors
}

// Dropped returns how many row errors arrived after the limit was reached
func (c *RowErrorCollector) Dropped() int {
	return c.dropped
}

// FormatRowErrors renders row errors for a log line or terminal
func FormatRowErrors(errs []*RowError) string {
	if len(errs) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%d row error(s):", len(errs)))
	for i, err := range errs {
		if i >= 10 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(errs)-10))
			break
		}
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return strings.Join(lines, "\n")
}
