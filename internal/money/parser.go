// Package money parses the currency strings shown on the source pages and
// rescales amounts between magnitude units.
//
// A money string is free text holding one number and a unit label in the
// source language, for example "2.5 مليون دولار". ParseMoney splits it into
// the number and the residual label; Normalizer converts amounts whose label
// names a known magnitude (thousand, million, billion) into one target unit.
package money

import (
	"regexp"
	"strconv"
	"strings"

	"golang-export-scraper/pkg/errors"

	"github.com/shopspring/decimal"
)

// numericToken is the fixed numeric grammar. Only its first match is used.
// Digits may be ASCII, Arabic-Indic or Extended Arabic-Indic.
var numericToken = regexp.MustCompile(`[-+]?[0-9٠-٩۰-۹]*\.[0-9٠-٩۰-۹]+|[0-9٠-٩۰-۹]+`)

// asciiDigits rewrites Arabic-Indic digits as their ASCII equivalents
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// Money is a parsed currency string
type Money struct {
	Amount decimal.Decimal
	Label  string
}

// ParseMoney extracts the first numeric token from text. The label is text
// with that token removed and surrounding whitespace trimmed. Text with more
// than one number keeps only the first ("12-15 مليون" parses as 12).
func ParseMoney(text string) (Money, error) {
	loc := numericToken.FindStringIndex(text)
	if loc == nil {
		return Money{}, errors.NoNumericTokenFound(text)
	}

	token := text[loc[0]:loc[1]]
	amount, err := decimal.NewFromString(asciiDigits(token))
	if err != nil {
		return Money{}, errors.ParseError(errors.CodeInvalidData, "amount", token, err)
	}

	label := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return Money{Amount: amount, Label: label}, nil
}

// ParseGroupedInt parses an integer written with comma thousands separators,
// such as the raw monthly amounts ("543,354").
func ParseGroupedInt(text string) (int64, error) {
	cleaned := asciiDigits(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, errors.ParseError(errors.CodeInvalidData, "amount", text, err)
	}
	return value, nil
}
