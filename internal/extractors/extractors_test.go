package extractors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang-export-scraper/internal/models"
	"golang-export-scraper/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	items   map[string][]models.ItemRecord
	yearly  map[string][]models.YearlyRecord
	monthly map[string][]models.MonthlyRecord
}

func newMemorySink() *memorySink {
	return &memorySink{
		items:   make(map[string][]models.ItemRecord),
		yearly:  make(map[string][]models.YearlyRecord),
		monthly: make(map[string][]models.MonthlyRecord),
	}
}

func (s *memorySink) WriteItems(code string, records []models.ItemRecord) error {
	s.items[code] = records
	return nil
}

func (s *memorySink) WriteYearly(code string, records []models.YearlyRecord) error {
	s.yearly[code] = records
	return nil
}

func (s *memorySink) WriteMonthly(code string, records []models.MonthlyRecord) error {
	s.monthly[code] = records
	return nil
}

func fixturePage(t *testing.T) *Page {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "country.html"))
	require.NoError(t, err)
	defer f.Close()

	page, err := NewPage("SAU", "http://example.test/SAU", f)
	require.NoError(t, err)
	return page
}

func htmlPage(t *testing.T, html string) *Page {
	t.Helper()
	page, err := NewPage("TST", "http://example.test/TST", strings.NewReader(html))
	require.NoError(t, err)
	return page
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseMetadata(t *testing.T) {
	record, err := ParseMetadata(fixturePage(t))
	require.NoError(t, err)

	assert.Equal(t, "SAU", record.CountryCode)
	assert.Equal(t, "السعودية", record.CountryName)
	assert.True(t, record.TotalExportAmount.Equal(dec("2.5")))
	assert.Equal(t, "مليار دولار", record.TotalExportValue)
}

func TestParseMetadataMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		field string
		code  errors.ErrorCode
	}{
		{
			name:  "no country name",
			html:  `<div><span class="text-primary">3 مليون دولار</span></div>`,
			field: "country_name",
			code:  errors.CodeMissingField,
		},
		{
			name:  "no total",
			html:  `<h3><span><span class="text-primary">مصر</span></span></h3>`,
			field: "total_export",
			code:  errors.CodeMissingField,
		},
		{
			name: "total without number",
			html: `<h3><span><span class="text-primary">مصر</span></span></h3>
				<div><span class="text-primary">غير متاح</span></div>`,
			code: errors.CodeNoNumericToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(htmlPage(t, tt.html))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)

			se, ok := errors.AsScraperError(err)
			require.True(t, ok)
			if tt.field != "" {
				assert.Equal(t, tt.field, se.Context["field"])
			}
			assert.Equal(t, "TST", se.Context["country_code"])
		})
	}
}

func TestItemsExtractor(t *testing.T) {
	sink := newMemorySink()
	ex := NewItemsExtractor(nil)

	result, err := ex.Extract(fixturePage(t), sink)
	require.NoError(t, err)
	assert.Equal(t, models.ExtractorItems, result.Extractor)
	assert.Equal(t, 3, result.Records)
	assert.Empty(t, result.RowErrors)

	items := sink.items["SAU"]
	require.Len(t, items, 3)
	assert.Equal(t, "زيوت بترولية", items[0].Item)
	assert.True(t, items[0].Amount.Equal(dec("310.5")))
	assert.Equal(t, "مليون دولار", items[0].Value)
	assert.Equal(t, "برتقال", items[1].Item)
	assert.Equal(t, "حديد", items[2].Item)
	assert.Equal(t, "ألف دولار", items[2].Value)
}

func TestItemsEmptyAmountIsRowError(t *testing.T) {
	page := htmlPage(t, `<table>
		<tr><th>البند</th><th>القيمة</th></tr>
		<tr><td>1 - قطن</td><td>4 مليون دولار</td></tr>
		<tr><td>2 - أرز</td><td></td></tr>
		<tr><td>3 - سكر</td><td>7 ألف دولار</td></tr>
	</table>`)

	records, rowErrs, err := NewItemsExtractor(nil).Parse(page)
	require.NoError(t, err)

	require.Len(t, rowErrs, 1)
	assert.True(t, errors.HasCode(rowErrs[0], errors.CodeNoNumericToken))
	assert.Equal(t, 2, rowErrs[0].Row.Row)
	assert.Equal(t, "items", rowErrs[0].Row.Extractor)

	require.Len(t, records, 2)
	assert.Equal(t, "قطن", records[0].Item)
	assert.Equal(t, "سكر", records[1].Item)
	assert.True(t, records[1].Amount.Equal(dec("7")))
}

func TestItemsNegativeAmountIsRowError(t *testing.T) {
	page := htmlPage(t, `<table>
		<tr><td>قطن</td><td>-4 مليون دولار</td></tr>
		<tr><td>أرز</td><td>1 مليون دولار</td></tr>
	</table>`)

	records, rowErrs, err := NewItemsExtractor(nil).Parse(page)
	require.NoError(t, err)
	require.Len(t, rowErrs, 1)
	assert.True(t, errors.HasCode(rowErrs[0], errors.CodeOutOfRange))
	require.Len(t, records, 1)
	assert.Equal(t, "أرز", records[0].Item)
}

func TestItemsRowErrorLimitKeepsExtracting(t *testing.T) {
	page := htmlPage(t, `<table>
		<tr><td>1 - قطن</td><td>غير متاح</td></tr>
		<tr><td>2 - أرز</td><td></td></tr>
		<tr><td>3 - سكر</td><td>5 مليون دولار</td></tr>
		<tr><td>4 - شاي</td><td>7 ألف دولار</td></tr>
	</table>`)

	ex := NewItemsExtractor(nil)
	ex.MaxRowErrors = 1

	sink := newMemorySink()
	result, err := ex.Extract(page, sink)
	require.NoError(t, err)

	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 1, result.RowErrors[0].Row.Row)
	assert.Equal(t, 2, result.Records)

	written := sink.items["TST"]
	require.Len(t, written, 2)
	assert.Equal(t, "سكر", written[0].Item)
	assert.Equal(t, "شاي", written[1].Item)
	assert.True(t, written[1].Amount.Equal(dec("7")))
}

func TestItemsStructuralMismatch(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "no table", html: `<p>لا توجد بيانات</p>`},
		{name: "short row", html: `<table><tr><td>قطن</td></tr></table>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newMemorySink()
			_, err := NewItemsExtractor(nil).Extract(htmlPage(t, tt.html), sink)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeStructuralMismatch))
			assert.NotContains(t, sink.items, "TST")
		})
	}
}

func TestYearlyExtractor(t *testing.T) {
	sink := newMemorySink()
	result, err := NewYearlyExtractor().Extract(fixturePage(t), sink)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)

	want := []models.YearlyRecord{
		{Year: "2018", Amount: dec("10"), Value: "مليون دولار"},
		{Year: "2019", Amount: dec("12"), Value: "مليون دولار"},
		{Year: "2020", Amount: dec("15"), Value: "مليون دولار"},
	}
	got := sink.yearly["SAU"]
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Year, got[i].Year)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "year %s: %s", want[i].Year, got[i].Amount)
		assert.Equal(t, want[i].Value, got[i].Value)
	}
}

func TestYearlyStructuralMismatch(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "missing second table",
			html: `<table><tr><td>قطن</td><td>1 مليون دولار</td></tr></table>`,
		},
		{
			name: "value count differs from years",
			html: `<table></table><table>
				<thead><tr><th>2019</th><th>2020</th></tr></thead>
				<tbody><tr><td>الإجمالي</td><td>1 مليون دولار</td></tr></tbody>
			</table>`,
		},
		{
			name: "no body row",
			html: `<table></table><table><thead><tr><th>2020</th></tr></thead></table>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYearlyExtractor().Parse(htmlPage(t, tt.html))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeStructuralMismatch), "got %v", err)

			se, _ := errors.AsScraperError(err)
			assert.Equal(t, "yearly", se.Context["extractor"])
			assert.Equal(t, "TST", se.Context["country_code"])
		})
	}
}

func TestMissingYearlyTableLeavesItemsIntact(t *testing.T) {
	page := htmlPage(t, `
		<h3><span><span class="text-primary">الأردن</span></span></h3>
		<div><span class="text-primary">40 مليون دولار</span></div>
		<table>
			<tr><td>01 - أدوية</td><td>9.5 مليون دولار</td></tr>
			<tr><td>02 - خضروات</td><td>300 ألف دولار</td></tr>
		</table>`)

	sink := newMemorySink()
	var failed []models.Extractor
	for _, ex := range Default(nil) {
		if _, err := ex.Extract(page, sink); err != nil {
			failed = append(failed, ex.Name())
			if ex.Name() == models.ExtractorYearly {
				assert.True(t, errors.HasCode(err, errors.CodeStructuralMismatch))
			}
		}
	}

	assert.Equal(t, []models.Extractor{models.ExtractorYearly}, failed)
	require.Len(t, sink.items["TST"], 2)
	assert.Equal(t, "أدوية", sink.items["TST"][0].Item)
	assert.True(t, sink.items["TST"][1].Amount.Equal(dec("300")))
	assert.NotContains(t, sink.yearly, "TST")
	assert.Contains(t, sink.monthly, "TST")
}

func TestMonthlyExtractor(t *testing.T) {
	records, err := NewMonthlyExtractor().Parse(fixturePage(t))
	require.NoError(t, err)

	want := []models.MonthlyRecord{
		{Year: "2020", Month: "يناير", Amount: "543,354"},
		{Year: "2020", Month: "فبراير", Amount: "12,000"},
		{Year: "2021", Month: "يناير", Amount: "1,000"},
		{Year: "2021", Month: "فبراير", Amount: "0"},
		{Year: "2021", Month: "مارس", Amount: "77,120"},
	}
	assert.Equal(t, want, records)
}

func TestMonthlyWithoutBlocksWritesEmpty(t *testing.T) {
	sink := newMemorySink()
	result, err := NewMonthlyExtractor().Extract(htmlPage(t, `<table></table>`), sink)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Records)

	records, ok := sink.monthly["TST"]
	assert.True(t, ok)
	assert.Empty(t, records)
}

func TestMonthlyStructuralMismatch(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "month count differs from amounts",
			html: `<div class="row geo_info_item"><div><h2>2020</h2></div>
				<table><thead><tr><th>يناير</th><th>فبراير</th></tr></thead>
				<tbody><tr><td>5</td></tr></tbody></table></div>`,
		},
		{
			name: "missing year heading",
			html: `<div class="row geo_info_item">
				<table><thead><tr><th>يناير</th></tr></thead>
				<tbody><tr><td>5</td></tr></tbody></table></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMonthlyExtractor().Parse(htmlPage(t, tt.html))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeStructuralMismatch), "got %v", err)
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "  مليون \n\t دولار ", expected: "مليون دولار"},
		{input: "e\u0301", expected: "\u00e9"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanText(tt.input))
	}
}

func TestItemName(t *testing.T) {
	assert.Equal(t, "برتقال", itemName("0805 - موالح - برتقال"))
	assert.Equal(t, "قطن", itemName(" قطن "))
	assert.Equal(t, "", itemName("12 -"))
}
