package money

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit labels as they appear on the source pages
const (
	LabelThousand = "ألف"
	LabelMillion  = "مليون"
	LabelBillion  = "مليار"

	// NoneLabel is how the source marks a missing unit. It never names a unit.
	NoneLabel = "لا شئ"
)

// Unit is one magnitude word and the multiplier it stands for
type Unit struct {
	Label      string          `mapstructure:"label" json:"label"`
	Multiplier decimal.Decimal `mapstructure:"multiplier" json:"multiplier"`
}

// Vocabulary is the set of known units. A label containing several unit
// words is scaled by each of them in turn.
type Vocabulary []Unit

// DefaultVocabulary returns thousand, million and billion in the source language
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		{Label: LabelThousand, Multiplier: decimal.NewFromInt(1_000)},
		{Label: LabelMillion, Multiplier: decimal.NewFromInt(1_000_000)},
		{Label: LabelBillion, Multiplier: decimal.NewFromInt(1_000_000_000)},
	}
}

// VocabularyFromMap builds a vocabulary from label → multiplier pairs, as they
// come out of a config file. Units are ordered by ascending multiplier.
func VocabularyFromMap(m map[string]float64) Vocabulary {
	v := make(Vocabulary, 0, len(m))
	for label, mult := range m {
		v = append(v, Unit{Label: label, Multiplier: decimal.NewFromFloat(mult)})
	}
	sort.Slice(v, func(i, j int) bool {
		if c := v[i].Multiplier.Cmp(v[j].Multiplier); c != 0 {
			return c < 0
		}
		return v[i].Label < v[j].Label
	})
	return v
}

// Validate checks labels are non-empty and unique and multipliers positive
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return fmt.Errorf("unit vocabulary cannot be empty")
	}
	seen := make(map[string]bool, len(v))
	for _, u := range v {
		label := strings.TrimSpace(u.Label)
		if label == "" {
			return fmt.Errorf("unit label cannot be empty")
		}
		if seen[label] {
			return fmt.Errorf("duplicate unit label: %s", label)
		}
		seen[label] = true
		if strings.Contains(NoneLabel, label) {
			return fmt.Errorf("unit label %q matches the missing-unit marker %q", label, NoneLabel)
		}
		if !u.Multiplier.IsPositive() {
			return fmt.Errorf("multiplier for %s must be positive, got %s", label, u.Multiplier)
		}
	}
	return nil
}

// Lookup returns the unit with exactly this label
func (v Vocabulary) Lookup(label string) (Unit, bool) {
	for _, u := range v {
		if u.Label == label {
			return u, true
		}
	}
	return Unit{}, false
}

// Matches returns every unit whose label occurs in text, in vocabulary order
func (v Vocabulary) Matches(text string) []Unit {
	var units []Unit
	for _, u := range v {
		if strings.Contains(text, u.Label) {
			units = append(units, u)
		}
	}
	return units
}

// Normalizer rescales amounts into a single target unit
type Normalizer struct {
	units  Vocabulary
	target Unit
}

// NewNormalizer creates a Normalizer converting into the unit labelled target
func NewNormalizer(units Vocabulary, target string) (*Normalizer, error) {
	if err := units.Validate(); err != nil {
		return nil, err
	}
	t, ok := units.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("target unit %q is not in the vocabulary", target)
	}
	return &Normalizer{units: units, target: t}, nil
}

// DefaultNormalizer converts into millions using DefaultVocabulary
func DefaultNormalizer() *Normalizer {
	n, err := NewNormalizer(DefaultVocabulary(), LabelMillion)
	if err != nil {
		panic(err)
	}
	return n
}

// Target returns the canonical unit
func (n *Normalizer) Target() Unit {
	return n.target
}

// Scale converts amount expressed in the unit named by label. Each unit word
// in label applies its own factor, so "ألف مليون" scales by both. ok is false
// when label names no known unit, in which case amount is returned as is.
func (n *Normalizer) Scale(amount decimal.Decimal, label string) (scaled decimal.Decimal, ok bool) {
	units := n.units.Matches(label)
	if len(units) == 0 {
		return amount, false
	}
	scaled = amount
	for _, u := range units {
		scaled = scaled.Mul(u.Multiplier).Div(n.target.Multiplier)
	}
	return scaled, true
}

// Stats counts how a Normalize pass treated each row
type Stats struct {
	Scaled             int
	Missing            int
	Unrecognized       int
	UnrecognizedLabels []string
}

// NormalizeRecords rescales every amount in place. column returns pointers to
// the record's amount and unit label; labels are never modified. A missing
// label counts as NoneLabel and leaves the amount unscaled. Labels naming no
// known unit are left alone and reported in Stats.
func NormalizeRecords[T any](n *Normalizer, records []T, column func(*T) (*decimal.Decimal, *string)) Stats {
	var stats Stats
	seen := make(map[string]bool)

	for i := range records {
		amount, label := column(&records[i])
		if strings.TrimSpace(*label) == "" || *label == NoneLabel {
			stats.Missing++
			continue
		}

		scaled, ok := n.Scale(*amount, *label)
		if !ok {
			stats.Unrecognized++
			if !seen[*label] {
				seen[*label] = true
				stats.UnrecognizedLabels = append(stats.UnrecognizedLabels, *label)
			}
			continue
		}
		*amount = scaled
		stats.Scaled++
	}

	return stats
}
