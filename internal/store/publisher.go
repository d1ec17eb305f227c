package store

import (
	"context"

	"golang-export-scraper/internal/dataset"
	"golang-export-scraper/internal/models"
	"golang-export-scraper/internal/money"
	"golang-export-scraper/pkg/logger"

	"github.com/shopspring/decimal"
)

// PublishStats counts what a Publish pass wrote
type PublishStats struct {
	Countries    int
	Skipped      int
	Items        int
	Yearly       int
	Monthly      int
	Unrecognized int
}

// Publisher loads country directories, normalizes their amounts and hands
// them to a Store one country at a time.
type Publisher struct {
	reader     *dataset.Reader
	store      Store
	normalizer *money.Normalizer
	logger     logger.Logger
}

// NewPublisher creates a Publisher
func NewPublisher(reader *dataset.Reader, s Store, normalizer *money.Normalizer, log logger.Logger) *Publisher {
	if s == nil {
		s = &NopStore{}
	}
	if normalizer == nil {
		normalizer = money.DefaultNormalizer()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Publisher{reader: reader, store: s, normalizer: normalizer, logger: log.WithComponent("publisher")}
}

// Publish mirrors every country directory. A country that cannot be read is
// skipped and logged; a store failure stops the pass.
func (p *Publisher) Publish(ctx context.Context, runID string) (*PublishStats, error) {
	codes, err := p.reader.Countries()
	if err != nil {
		return nil, err
	}

	stats := &PublishStats{}
	log := p.logger.WithField("run_id", runID)

	for _, code := range codes {
		ds, unrecognized, err := p.Load(code)
		if err != nil {
			stats.Skipped++
			log.WithField("country_code", code).WithError(err).Warn("Skipping country")
			continue
		}

		if err := p.store.UpsertCountry(ctx, runID, ds); err != nil {
			return stats, err
		}
		stats.Countries++
		stats.Items += len(ds.Items)
		stats.Yearly += len(ds.Yearly)
		stats.Monthly += len(ds.Monthly)
		stats.Unrecognized += unrecognized
	}

	log.WithFields(logger.Fields{
		"countries": stats.Countries,
		"skipped":   stats.Skipped,
	}).Info("Dataset published")
	return stats, nil
}

// Load reads one country and converts it to store rows with amounts in the
// canonical unit. It returns how many amounts had an unrecognized unit.
func (p *Publisher) Load(code string) (CountryDataset, int, error) {
	var ds CountryDataset

	record, err := p.reader.ReadMetadata(code)
	if err != nil {
		return ds, 0, err
	}
	items, err := p.reader.ReadItems(code)
	if err != nil {
		return ds, 0, err
	}
	yearly, err := p.reader.ReadYearly(code)
	if err != nil {
		return ds, 0, err
	}
	monthly, err := p.reader.ReadMonthly(code)
	if err != nil {
		return ds, 0, err
	}

	countries := []CountryRow{{
		Code:      code,
		Name:      record.CountryName,
		Amount:    record.TotalExportAmount,
		RawAmount: record.TotalExportAmount,
		Unit:      record.TotalExportValue,
		Color:     dataset.ColorFor(code),
	}}

	ds.Items = make([]ItemRow, len(items))
	for i, item := range items {
		ds.Items[i] = ItemRow{Position: i, Item: item.Item, Amount: item.Amount, RawAmount: item.Amount, Unit: item.Value}
	}
	ds.Yearly = make([]YearlyRow, len(yearly))
	for i, y := range yearly {
		ds.Yearly[i] = YearlyRow{Year: y.Year, Amount: y.Amount, RawAmount: y.Amount, Unit: y.Value}
	}
	ds.Monthly = monthlyRows(monthly)

	unrecognized := money.NormalizeRecords(p.normalizer, countries, func(r *CountryRow) (*decimal.Decimal, *string) {
		return &r.Amount, &r.Unit
	}).Unrecognized
	unrecognized += money.NormalizeRecords(p.normalizer, ds.Items, func(r *ItemRow) (*decimal.Decimal, *string) {
		return &r.Amount, &r.Unit
	}).Unrecognized
	unrecognized += money.NormalizeRecords(p.normalizer, ds.Yearly, func(r *YearlyRow) (*decimal.Decimal, *string) {
		return &r.Amount, &r.Unit
	}).Unrecognized

	ds.Country = countries[0]
	return ds, unrecognized, nil
}

func monthlyRows(records []models.MonthlyRecord) []MonthlyRow {
	rows := make([]MonthlyRow, len(records))
	for i, r := range records {
		rows[i] = MonthlyRow{Position: i, Year: r.Year, Month: r.Month, RawText: r.Amount}
		if v, err := money.ParseGroupedInt(r.Amount); err == nil {
			rows[i].Amount = &v
		}
	}
	return rows
}
