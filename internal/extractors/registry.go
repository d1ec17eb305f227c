package extractors

import "golang-export-scraper/pkg/logger"

// Default returns the three extractors in the order the driver runs them
func Default(log logger.Logger) []Extractor {
	return []Extractor{
		NewItemsExtractor(log),
		NewYearlyExtractor(),
		NewMonthlyExtractor(),
	}
}
