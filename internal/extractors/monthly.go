package extractors

import (
	"fmt"

	"golang-export-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const monthlyBlockSelector = "div.row.geo_info_item"

// MonthlyExtractor reads every per-year block. Amounts are kept as the raw
// cell text ("543,354"); consumers convert them with money.ParseGroupedInt.
type MonthlyExtractor struct{}

// NewMonthlyExtractor creates a MonthlyExtractor
func NewMonthlyExtractor() *MonthlyExtractor {
	return &MonthlyExtractor{}
}

// Name implements Extractor
func (e *MonthlyExtractor) Name() models.Extractor {
	return models.ExtractorMonthly
}

// Extract writes monthly.csv. A page without yearly blocks yields a file
// holding only the header.
func (e *MonthlyExtractor) Extract(page *Page, sink Sink) (Result, error) {
	records, err := e.Parse(page)
	result := Result{Extractor: e.Name(), Records: len(records)}
	if err != nil {
		return result, err
	}
	return result, sink.WriteMonthly(page.CountryCode, records)
}

// Parse extracts one record per (year, month) in block and header order
func (e *MonthlyExtractor) Parse(page *Page) ([]models.MonthlyRecord, error) {
	records := make([]models.MonthlyRecord, 0)
	var blockErr error

	page.Doc.Find(monthlyBlockSelector).EachWithBreak(func(i int, block *goquery.Selection) bool {
		year := ""
		block.Find("div h2").Each(func(_ int, h *goquery.Selection) {
			year += h.Text()
		})
		year = CleanText(year)
		if year == "" {
			blockErr = mismatch(page, e.Name(), fmt.Sprintf("block %d has no year heading", i))
			return false
		}

		months := cellTexts(block.Find("table thead tr th"))
		amounts := cellTexts(block.Find("table tbody tr td"))
		if len(months) != len(amounts) {
			blockErr = mismatch(page, e.Name(),
				fmt.Sprintf("year %s has %d months but %d amounts", year, len(months), len(amounts)))
			return false
		}

		for j, month := range months {
			records = append(records, models.MonthlyRecord{Year: year, Month: month, Amount: amounts[j]})
		}
		return true
	})

	if blockErr != nil {
		return nil, blockErr
	}
	return records, nil
}
