package models

// CountryStatus is the state of one country in a scrape batch
type CountryStatus string

const (
	StatusPending  CountryStatus = "PENDING"
	StatusFetching CountryStatus = "FETCHING"
	StatusParsed   CountryStatus = "PARSED"
	StatusWritten  CountryStatus = "WRITTEN"
	StatusFailed   CountryStatus = "FAILED"
)

var statusTransitions = map[CountryStatus][]CountryStatus{
	StatusPending:  {StatusFetching},
	StatusFetching: {StatusParsed, StatusFailed},
	StatusParsed:   {StatusWritten, StatusFailed},
}

// CanTransition reports whether moving from s to next is allowed
func (s CountryStatus) CanTransition(next CountryStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Extractor names one of the three table extractors
type Extractor string

const (
	ExtractorItems   Extractor = "items"
	ExtractorYearly  Extractor = "yearly"
	ExtractorMonthly Extractor = "monthly"
)

// Extractors lists the extractors in the order the driver runs them
var Extractors = []Extractor{ExtractorItems, ExtractorYearly, ExtractorMonthly}

// FileName returns the CSV artifact the extractor produces
func (e Extractor) FileName() string {
	switch e {
	case ExtractorItems:
		return ItemsFile
	case ExtractorYearly:
		return YearlyFile
	case ExtractorMonthly:
		return MonthlyFile
	default:
		return ""
	}
}
