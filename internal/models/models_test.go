package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCountryRecordJSON(t *testing.T) {
	record := CountryRecord{
		CountryCode:       "SAU",
		CountryName:       "السعودية",
		TotalExportAmount: decimal.RequireFromString("2.5"),
		TotalExportValue:  "مليار دولار",
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `"total_export_amount":2.5`) {
		t.Errorf("expected numeric amount, got %s", out)
	}
	if strings.Contains(out, "SAU") {
		t.Errorf("country code must not be serialized, got %s", out)
	}

	var back CountryRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.TotalExportAmount.Equal(record.TotalExportAmount) {
		t.Errorf("expected amount %s, got %s", record.TotalExportAmount, back.TotalExportAmount)
	}
	if back.CountryName != record.CountryName || back.TotalExportValue != record.TotalExportValue {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestCountryRecordValidate(t *testing.T) {
	tests := []struct {
		name        string
		record      CountryRecord
		expectError bool
	}{
		{name: "valid", record: CountryRecord{CountryName: "مصر", TotalExportAmount: decimal.NewFromInt(1)}},
		{name: "empty name", record: CountryRecord{CountryName: "  "}, expectError: true},
		{name: "negative amount", record: CountryRecord{CountryName: "x", TotalExportAmount: decimal.NewFromInt(-1)}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestItemRecordValidate(t *testing.T) {
	ok := ItemRecord{Item: "برتقال", Amount: decimal.Zero, Value: "ألف دولار"}
	if err := ok.Validate(); err != nil {
		t.Errorf("zero amount should be valid: %v", err)
	}

	bad := ItemRecord{Item: "x", Amount: decimal.NewFromInt(-3)}
	if err := bad.Validate(); err == nil {
		t.Error("expected negative amount to be rejected")
	}
}

func TestCSVRows(t *testing.T) {
	item := ItemRecord{Item: "غاز طبيعي", Amount: decimal.RequireFromString("12.75"), Value: "مليون دولار"}
	if got := strings.Join(item.CSVRow(), "|"); got != "غاز طبيعي|12.75|مليون دولار" {
		t.Errorf("unexpected item row %q", got)
	}

	yearly := YearlyRecord{Year: "2020", Amount: decimal.NewFromInt(15), Value: "مليون دولار"}
	if len(yearly.CSVRow()) != len(YearlyHeader) {
		t.Errorf("yearly row does not match header width")
	}

	monthly := MonthlyRecord{Year: "2021", Month: "يناير", Amount: "543,354"}
	if got := monthly.CSVRow()[2]; got != "543,354" {
		t.Errorf("monthly amount must stay raw, got %q", got)
	}
}

func TestCountrySummaryJSON(t *testing.T) {
	record := CountryRecord{CountryName: "الإمارات", TotalExportAmount: decimal.RequireFromString("950"), TotalExportValue: "مليون دولار"}
	summary := NewCountrySummary("ARE", record, "#112233")

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"Country Code", "Country Name", "Export Amount", "Export Value", "Color"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if raw["Export Amount"] != float64(950) {
		t.Errorf("expected numeric export amount, got %v", raw["Export Amount"])
	}

	var back CountrySummary
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal into summary failed: %v", err)
	}
	if back.CountryCode != "ARE" || !back.ExportAmount.Equal(summary.ExportAmount) {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestCountryStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to CountryStatus
		allowed  bool
	}{
		{StatusPending, StatusFetching, true},
		{StatusFetching, StatusParsed, true},
		{StatusFetching, StatusFailed, true},
		{StatusParsed, StatusWritten, true},
		{StatusParsed, StatusFailed, true},
		{StatusPending, StatusWritten, false},
		{StatusWritten, StatusFailed, false},
		{StatusFailed, StatusFetching, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestExtractorFileName(t *testing.T) {
	want := map[Extractor]string{
		ExtractorItems:   ItemsFile,
		ExtractorYearly:  YearlyFile,
		ExtractorMonthly: MonthlyFile,
	}
	for _, e := range Extractors {
		if e.FileName() != want[e] {
			t.Errorf("%s: expected %s, got %s", e, want[e], e.FileName())
		}
	}
	if Extractor("other").FileName() != "" {
		t.Error("unknown extractor should have no file")
	}
}
