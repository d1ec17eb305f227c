package money

import (
	"strings"
	"testing"
	"unicode"

	"golang-export-scraper/pkg/errors"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		amount      string
		label       string
		expectError bool
	}{
		{name: "decimal million", input: "2.5 مليون دولار", amount: "2.5", label: "مليون دولار"},
		{name: "zero thousand", input: "0 ألف دولار", amount: "0", label: "ألف دولار"},
		{name: "integer billion", input: "12 مليار دولار", amount: "12", label: "مليار دولار"},
		{name: "leading dot", input: ".75 مليون دولار", amount: "0.75", label: "مليون دولار"},
		{name: "signed", input: "-3.2 ألف دولار", amount: "-3.2", label: "ألف دولار"},
		{name: "label first", input: "دولار 40", amount: "40", label: "دولار"},
		{name: "surrounding whitespace", input: "  7 مليون دولار \n", amount: "7", label: "مليون دولار"},
		{name: "first number wins", input: "12-15 مليون", amount: "12", label: "-15 مليون"},
		{name: "arabic-indic digits", input: "١٠ مليون دولار", amount: "10", label: "مليون دولار"},
		{name: "arabic-indic decimal", input: "٢.٥ ألف دولار", amount: "2.5", label: "ألف دولار"},
		{name: "extended arabic-indic digits", input: "۳ مليار دولار", amount: "3", label: "مليار دولار"},
		{name: "empty", input: "", expectError: true},
		{name: "no digits", input: "مليون دولار", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.HasCode(err, errors.CodeNoNumericToken) {
					t.Errorf("expected no_numeric_token, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Amount.Equal(decimal.RequireFromString(tt.amount)) {
				t.Errorf("expected amount %s, got %s", tt.amount, got.Amount)
			}
			if got.Label != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, got.Label)
			}
		})
	}
}

func TestParseMoneyLabelHasNoDigits(t *testing.T) {
	inputs := []string{"1 ألف دولار", "33.5 مليون دولار", "دولار 8 مليار", "0.001 مليون"}
	for _, input := range inputs {
		got, err := ParseMoney(input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if strings.IndexFunc(got.Label, unicode.IsDigit) >= 0 {
			t.Errorf("%q: label %q contains a digit", input, got.Label)
		}
		if !strings.Contains(input, got.Amount.String()) {
			t.Errorf("%q: amount %s is not a substring of the input", input, got.Amount)
		}
	}
}

func TestParseGroupedInt(t *testing.T) {
	got, err := ParseGroupedInt("543,354")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 543354 {
		t.Errorf("expected 543354, got %d", got)
	}
	if got, err := ParseGroupedInt("٥٤٣,٣٥٤"); err != nil || got != 543354 {
		t.Errorf("expected 543354 from arabic-indic digits, got %d (err=%v)", got, err)
	}
	if _, err := ParseGroupedInt("n/a"); err == nil {
		t.Error("expected error for non-numeric text")
	}
}

type row struct {
	amount decimal.Decimal
	label  string
}

func rowColumn(r *row) (*decimal.Decimal, *string) { return &r.amount, &r.label }

func TestNormalizeRecords(t *testing.T) {
	n := DefaultNormalizer()
	rows := []row{
		{amount: decimal.NewFromInt(5), label: "ألف دولار"},
		{amount: decimal.RequireFromString("2.5"), label: "مليون دولار"},
		{amount: decimal.NewFromInt(3), label: "مليار دولار"},
		{amount: decimal.NewFromInt(9), label: ""},
		{amount: decimal.NewFromInt(4), label: "دولار"},
	}

	stats := NormalizeRecords(n, rows, rowColumn)

	want := []string{"0.005", "2.5", "3000", "9", "4"}
	for i, w := range want {
		if !rows[i].amount.Equal(decimal.RequireFromString(w)) {
			t.Errorf("row %d: expected %s, got %s", i, w, rows[i].amount)
		}
	}
	if rows[3].label != "" {
		t.Errorf("expected missing label to stay empty, got %q", rows[3].label)
	}
	if rows[0].label != "ألف دولار" {
		t.Errorf("labels should be untouched, got %q", rows[0].label)
	}
	if stats.Scaled != 3 || stats.Missing != 1 || stats.Unrecognized != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(stats.UnrecognizedLabels) != 1 || stats.UnrecognizedLabels[0] != "دولار" {
		t.Errorf("unexpected unrecognized labels %v", stats.UnrecognizedLabels)
	}
}

func TestNormalizeCanonicalIsIdempotent(t *testing.T) {
	n := DefaultNormalizer()
	rows := []row{
		{amount: decimal.RequireFromString("10"), label: "مليون دولار"},
		{amount: decimal.RequireFromString("0.125"), label: "مليون دولار"},
	}

	NormalizeRecords(n, rows, rowColumn)
	first := []decimal.Decimal{rows[0].amount, rows[1].amount}
	NormalizeRecords(n, rows, rowColumn)

	for i := range rows {
		if !rows[i].amount.Equal(first[i]) {
			t.Errorf("row %d changed on second pass: %s -> %s", i, first[i], rows[i].amount)
		}
	}
}

func TestNormalizeCompoundUnits(t *testing.T) {
	n := DefaultNormalizer()
	rows := []row{
		{amount: decimal.NewFromInt(2), label: "ألف مليون دولار"},
		{amount: decimal.NewFromInt(3), label: "مليار ألف"},
		{amount: decimal.NewFromInt(4), label: NoneLabel},
	}

	stats := NormalizeRecords(n, rows, rowColumn)

	want := []string{"0.002", "3", "4"}
	for i, w := range want {
		if !rows[i].amount.Equal(decimal.RequireFromString(w)) {
			t.Errorf("row %d: expected %s, got %s", i, w, rows[i].amount)
		}
	}
	if stats.Scaled != 2 || stats.Missing != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if rows[2].label != NoneLabel {
		t.Errorf("expected label to be untouched, got %q", rows[2].label)
	}
}

func TestNewNormalizer(t *testing.T) {
	if _, err := NewNormalizer(DefaultVocabulary(), "trillion"); err == nil {
		t.Error("expected error for a target outside the vocabulary")
	}

	n, err := NewNormalizer(DefaultVocabulary(), LabelThousand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled, ok := n.Scale(decimal.NewFromInt(2), "مليون دولار")
	if !ok || !scaled.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected 2000 thousand, got %s (ok=%v)", scaled, ok)
	}
	if n.Target().Label != LabelThousand {
		t.Errorf("unexpected target %q", n.Target().Label)
	}
}

func TestVocabularyValidate(t *testing.T) {
	tests := []struct {
		name        string
		vocabulary  Vocabulary
		expectError bool
	}{
		{name: "default", vocabulary: DefaultVocabulary()},
		{name: "empty", vocabulary: Vocabulary{}, expectError: true},
		{name: "blank label", vocabulary: Vocabulary{{Label: " ", Multiplier: decimal.NewFromInt(1)}}, expectError: true},
		{name: "missing-unit marker", vocabulary: Vocabulary{{Label: "شئ", Multiplier: decimal.NewFromInt(1)}}, expectError: true},
		{name: "zero multiplier", vocabulary: Vocabulary{{Label: "x", Multiplier: decimal.Zero}}, expectError: true},
		{
			name: "duplicate",
			vocabulary: Vocabulary{
				{Label: "x", Multiplier: decimal.NewFromInt(1)},
				{Label: "x", Multiplier: decimal.NewFromInt(2)},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vocabulary.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestVocabularyFromMap(t *testing.T) {
	v := VocabularyFromMap(map[string]float64{
		LabelBillion:  1e9,
		LabelThousand: 1e3,
		LabelMillion:  1e6,
		"thousand":    1e3,
	})

	if len(v) != 4 {
		t.Fatalf("expected 4 units, got %d", len(v))
	}
	if !v[0].Multiplier.Equal(decimal.NewFromInt(1000)) || !v[3].Multiplier.Equal(decimal.NewFromInt(1_000_000_000)) {
		t.Errorf("expected ascending multipliers, got %v", v)
	}

	n, err := NewNormalizer(v, LabelMillion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled, ok := n.Scale(decimal.NewFromInt(500), "thousand USD")
	if !ok || !scaled.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected configured unit to scale, got %s (ok=%v)", scaled, ok)
	}
}
