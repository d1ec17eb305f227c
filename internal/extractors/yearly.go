package extractors

import (
	"fmt"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/internal/money"
	"golang-export-scraper/pkg/errors"
)

// YearlyExtractor reads the second table of the page: years from the header
// row, totals from the first body row after its label cell.
type YearlyExtractor struct{}

// NewYearlyExtractor creates a YearlyExtractor
func NewYearlyExtractor() *YearlyExtractor {
	return &YearlyExtractor{}
}

// Name implements Extractor
func (e *YearlyExtractor) Name() models.Extractor {
	return models.ExtractorYearly
}

// Extract writes yearly.csv
func (e *YearlyExtractor) Extract(page *Page, sink Sink) (Result, error) {
	records, err := e.Parse(page)
	result := Result{Extractor: e.Name(), Records: len(records)}
	if err != nil {
		return result, err
	}
	return result, sink.WriteYearly(page.CountryCode, records)
}

// Parse extracts one record per header year. Empty header cells (the corner
// above the row labels) are ignored. Years and body values must line up.
func (e *YearlyExtractor) Parse(page *Page) ([]models.YearlyRecord, error) {
	table := page.Doc.Find("table").Eq(1)
	if table.Length() == 0 {
		return nil, mismatch(page, e.Name(), "yearly table not found")
	}

	var years []string
	for _, text := range cellTexts(table.Find("thead tr th")) {
		if text != "" {
			years = append(years, text)
		}
	}
	if len(years) == 0 {
		return nil, mismatch(page, e.Name(), "yearly table has no year header")
	}

	firstRow := table.Find("tbody tr").First()
	if firstRow.Length() == 0 {
		return nil, mismatch(page, e.Name(), "yearly table has no body row")
	}

	cells := cellTexts(firstRow.Find("td"))
	if len(cells) < 1 {
		return nil, mismatch(page, e.Name(), "yearly body row has no cells")
	}
	values := cells[1:]
	if len(values) != len(years) {
		return nil, mismatch(page, e.Name(),
			fmt.Sprintf("%d years but %d yearly values", len(years), len(values)))
	}

	records := make([]models.YearlyRecord, 0, len(years))
	for i, year := range years {
		m, err := money.ParseMoney(values[i])
		if err != nil {
			return nil, errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeInvalidData, "invalid yearly value").
				WithContext("country_code", page.CountryCode).
				WithContext("extractor", string(e.Name())).
				WithContext("year", year)
		}
		records = append(records, models.YearlyRecord{Year: year, Amount: m.Amount, Value: m.Label})
	}
	return records, nil
}
