package extractors

import (
	"golang-export-scraper/internal/models"
	"golang-export-scraper/internal/money"
	"golang-export-scraper/pkg/errors"
)

const (
	countryNameSelector = "h3 > span > span.text-primary"
	totalExportSelector = "div > span.text-primary"
)

// ParseMetadata reads the country name and total exports from the page
// header. Both are required; a missing one fails the whole country.
func ParseMetadata(page *Page) (models.CountryRecord, error) {
	record := models.CountryRecord{CountryCode: page.CountryCode}

	name := page.Doc.Find(countryNameSelector).First()
	if name.Length() == 0 || CleanText(name.Text()) == "" {
		return record, errors.MissingField(page.CountryCode, "country_name").WithContext("url", page.URL)
	}
	record.CountryName = CleanText(name.Text())

	total := page.Doc.Find(totalExportSelector).First()
	if total.Length() == 0 {
		return record, errors.MissingField(page.CountryCode, "total_export").WithContext("url", page.URL)
	}

	m, err := money.ParseMoney(CleanText(total.Text()))
	if err != nil {
		return record, errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeInvalidData, "invalid total export").
			WithContext("country_code", page.CountryCode).
			WithContext("url", page.URL)
	}
	record.TotalExportAmount = m.Amount
	record.TotalExportValue = m.Label

	if err := record.Validate(); err != nil {
		return record, errors.ParseError(errors.CodeOutOfRange, "total_export_amount", m.Amount.String(), err).
			WithContext("country_code", page.CountryCode)
	}
	return record, nil
}
