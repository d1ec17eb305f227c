package extractors

import (
	"strings"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/internal/money"
	"golang-export-scraper/pkg/errors"
	"golang-export-scraper/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// ItemsExtractor reads the first table of the page. Each data row holds the
// item name in cell 0 and its money text in cell 1.
type ItemsExtractor struct {
	logger logger.Logger
	// MaxRowErrors caps the row errors kept in Result; 0 keeps all. Rows past
	// the cap are still extracted.
	MaxRowErrors int
}

// NewItemsExtractor creates an ItemsExtractor
func NewItemsExtractor(log logger.Logger) *ItemsExtractor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &ItemsExtractor{logger: log.WithComponent("items_extractor")}
}

// Name implements Extractor
func (e *ItemsExtractor) Name() models.Extractor {
	return models.ExtractorItems
}

// Extract writes items.csv. Rows whose amount cannot be parsed are skipped
// and reported in Result.RowErrors; they do not fail the extractor.
func (e *ItemsExtractor) Extract(page *Page, sink Sink) (Result, error) {
	records, rowErrs, err := e.Parse(page)
	result := Result{Extractor: e.Name(), Records: len(records), RowErrors: rowErrs}
	if err != nil {
		return result, err
	}

	if len(rowErrs) > 0 {
		e.logger.WithFields(logger.Fields{
			"country_code": page.CountryCode,
			"skipped":      len(rowErrs),
		}).Warnf("Skipping item rows: %s", errors.FormatRowErrors(rowErrs))
	}

	if err := sink.WriteItems(page.CountryCode, records); err != nil {
		return result, err
	}
	return result, nil
}

// Parse extracts item records in source row order
func (e *ItemsExtractor) Parse(page *Page) ([]models.ItemRecord, []*errors.RowError, error) {
	table := page.Doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil, mismatch(page, e.Name(), "items table not found")
	}

	collector := errors.NewRowErrorCollector(e.MaxRowErrors)
	records := make([]models.ItemRecord, 0)
	var structErr error

	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return true
		}
		if cells.Length() < 2 {
			structErr = mismatch(page, e.Name(), "item row has fewer than 2 cells").WithContext("row", i)
			return false
		}

		amountText := CleanText(cells.Eq(1).Text())
		rowCtx := &errors.RowContext{
			CountryCode: page.CountryCode,
			Extractor:   string(e.Name()),
			Row:         i,
			Column:      1,
			Value:       amountText,
		}

		m, err := money.ParseMoney(amountText)
		if err != nil {
			se, _ := errors.AsScraperError(err)
			collector.Add(errors.NewRowError(rowCtx, se))
			return true
		}

		record := models.ItemRecord{
			Item:   itemName(cells.Eq(0).Text()),
			Amount: m.Amount,
			Value:  m.Label,
		}
		if err := record.Validate(); err != nil {
			cause := errors.ParseError(errors.CodeOutOfRange, "amount", amountText, err)
			collector.Add(errors.NewRowError(rowCtx, cause))
			return true
		}

		records = append(records, record)
		return true
	})

	if structErr != nil {
		return nil, collector.Errors(), structErr
	}
	if n := collector.Dropped(); n > 0 {
		e.logger.WithField("country_code", page.CountryCode).
			Debugf("%d item row errors beyond the limit of %d were not kept", n, e.MaxRowErrors)
	}
	return records, collector.Errors(), nil
}

// itemName keeps what follows the last '-' of the cell, which drops the
// tariff code prefix ("0805 - برتقال" becomes "برتقال").
func itemName(cell string) string {
	text := CleanText(cell)
	if i := strings.LastIndex(text, "-"); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}
