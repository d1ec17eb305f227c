// Package models defines the records produced by the export scraper and the
// file layout of a country directory.
//
// Amounts are held as decimal.Decimal so that values read from the source
// page ("2.5 مليون دولار") keep their exact textual precision through CSV and
// JSON round trips. Unit labels are kept next to every amount; normalization
// to a canonical unit is a consumer concern (see internal/money).
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Artifact file names inside a country directory
const (
	MetadataFile = "metadata.json"
	ItemsFile    = "items.csv"
	YearlyFile   = "yearly.csv"
	MonthlyFile  = "monthly.csv"
)

// ArtifactFiles lists every file a complete country directory holds
var ArtifactFiles = []string{MetadataFile, ItemsFile, YearlyFile, MonthlyFile}

// CSV headers. Consumers bind to these names literally.
var (
	ItemsHeader   = []string{"Item", "Amount", "Value"}
	YearlyHeader  = []string{"Year", "Export Amount", "Export Value"}
	MonthlyHeader = []string{"Year", "Month", "Export Amount"}
)

// CountryRecord is the header information scraped from one country page
type CountryRecord struct {
	CountryCode       string          `json:"-"`
	CountryName       string          `json:"country_name"`
	TotalExportAmount decimal.Decimal `json:"total_export_amount"`
	TotalExportValue  string          `json:"total_export_value"`
}

// Validate performs basic validation on the CountryRecord
func (c *CountryRecord) Validate() error {
	if strings.TrimSpace(c.CountryName) == "" {
		return fmt.Errorf("country name cannot be empty")
	}
	if c.TotalExportAmount.IsNegative() {
		return fmt.Errorf("total export amount cannot be negative: %s", c.TotalExportAmount)
	}
	return nil
}

// MarshalJSON writes the amount as a JSON number
func (c CountryRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		CountryName       string      `json:"country_name"`
		TotalExportAmount json.Number `json:"total_export_amount"`
		TotalExportValue  string      `json:"total_export_value"`
	}{
		CountryName:       c.CountryName,
		TotalExportAmount: json.Number(c.TotalExportAmount.String()),
		TotalExportValue:  c.TotalExportValue,
	})
}

// ItemRecord is one exported item within a country
type ItemRecord struct {
	Item   string
	Amount decimal.Decimal
	Value  string
}

// Validate enforces the non-negative amount invariant
func (r *ItemRecord) Validate() error {
	if r.Amount.IsNegative() {
		return fmt.Errorf("item amount cannot be negative: %s", r.Amount)
	}
	return nil
}

// CSVRow renders the record in ItemsHeader order
func (r ItemRecord) CSVRow() []string {
	return []string{r.Item, r.Amount.String(), r.Value}
}

// YearlyRecord is one year's total exports for a country
type YearlyRecord struct {
	Year   string
	Amount decimal.Decimal
	Value  string
}

// CSVRow renders the record in YearlyHeader order
func (r YearlyRecord) CSVRow() []string {
	return []string{r.Year, r.Amount.String(), r.Value}
}

// MonthlyRecord is one month's exports. Amount is the raw cell text.
type MonthlyRecord struct {
	Year   string
	Month  string
	Amount string
}

// CSVRow renders the record in MonthlyHeader order
func (r MonthlyRecord) CSVRow() []string {
	return []string{r.Year, r.Month, r.Amount}
}

// CountrySummary is one entry of the top-level metadata.json
type CountrySummary struct {
	CountryCode  string          `json:"Country Code"`
	CountryName  string          `json:"Country Name"`
	ExportAmount decimal.Decimal `json:"Export Amount"`
	ExportValue  string          `json:"Export Value"`
	Color        string          `json:"Color"`
}

// MarshalJSON writes the amount as a JSON number
func (s CountrySummary) MarshalJSON() ([]byte, error) {
	type Alias CountrySummary
	return json.Marshal(&struct {
		ExportAmount json.Number `json:"Export Amount"`
		Alias
	}{
		ExportAmount: json.Number(s.ExportAmount.String()),
		Alias:        Alias(s),
	})
}

// NewCountrySummary builds a summary entry from a country's metadata
func NewCountrySummary(code string, record CountryRecord, color string) CountrySummary {
	return CountrySummary{
		CountryCode:  code,
		CountryName:  record.CountryName,
		ExportAmount: record.TotalExportAmount,
		ExportValue:  record.TotalExportValue,
		Color:        color,
	}
}
