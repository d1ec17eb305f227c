// Package extractors turns a parsed country page into typed export records.
//
// Every country page of the source carries the same fixed layout:
//   - a header with the country name (h3 > span > span.text-primary) and the
//     total exports text (div > span.text-primary)
//   - a first table listing exported items, one per row
//   - a second table whose header row holds years and whose first body row
//     holds the yearly totals
//   - one div.row.geo_info_item block per year with a monthly breakdown
//
// The extractors locate data by these fixed positions. When a position is
// missing they fail with a structural_mismatch error naming the country and
// the extractor, and leave the other extractors unaffected.
//
// Extractor Types:
//   - ItemsExtractor: items.csv from the first table
//   - YearlyExtractor: yearly.csv from the second table
//   - MonthlyExtractor: monthly.csv from the per-year blocks
//
// Example usage:
//
//	page, err := extractors.NewPage("SAU", url, resp.Body)
//	record, err := extractors.ParseMetadata(page)
//	for _, ex := range extractors.Default(log) {
//		result, err := ex.Extract(page, sink)
//	}
package extractors

import (
	"io"
	"strings"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Page is one fetched and parsed country page
type Page struct {
	CountryCode string
	URL         string
	Doc         *goquery.Document
}

// NewPage parses an HTML body into a Page
func NewPage(countryCode, url string, body io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.FetchFailure(errors.CodeUnparseableContent, url, err)
	}
	return &Page{CountryCode: countryCode, URL: url, Doc: doc}, nil
}

// Sink receives the records of one country. The dataset writer implements it.
type Sink interface {
	WriteItems(countryCode string, records []models.ItemRecord) error
	WriteYearly(countryCode string, records []models.YearlyRecord) error
	WriteMonthly(countryCode string, records []models.MonthlyRecord) error
}

// Result describes one extractor run
type Result struct {
	Extractor models.Extractor
	Records   int
	RowErrors []*errors.RowError
}

// Extractor produces exactly one artifact of a country directory
type Extractor interface {
	Name() models.Extractor
	Extract(page *Page, sink Sink) (Result, error)
}

// CleanText returns the NFC form of s with runs of whitespace collapsed to a
// single space and the ends trimmed.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// cellTexts returns the cleaned text of every element in sel
func cellTexts(sel *goquery.Selection) []string {
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, CleanText(s.Text()))
	})
	return texts
}

func mismatch(page *Page, extractor models.Extractor, detail string) *errors.ScraperError {
	return errors.StructuralMismatch(page.CountryCode, string(extractor), detail).
		WithContext("url", page.URL)
}
