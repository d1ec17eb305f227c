package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultURLTemplate is the country information page of the source site
const DefaultURLTemplate = "http://www.expoegypt.gov.eg/map/country-info?hscode=0&iso3={country_code}"

// CountryCodePlaceholder is replaced by the ISO3 code in a URL template
const CountryCodePlaceholder = "{country_code}"

var countryCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// DefaultCountryCodes lists the destinations collected when none are
// configured, in collection order.
var DefaultCountryCodes = []string{
	"ETH", "AZE", "ARM", "AUS", "AFG", "ALB", "DEU", "ATG", "AND", "IDN",
	"AGO", "AIA", "URY", "UZB", "UGA", "UKR", "IRL", "ISL", "ERI", "ESP",
	"ISR", "IOT", "IRN", "ITA", "EST", "ARG", "JOR", "ECU", "ARE", "BHS",
	"BHR", "BRA", "PRT", "BIH", "MNE", "DZA", "DNK", "CPV", "SAU", "SLV",
	"SEN", "SDN", "SWE", "SOM", "CHN", "IRQ", "GAB", "PHL", "CMR", "COG",
	"KWT", "MAR", "MEX", "GBR", "NOR", "AUT", "NER", "IND", "USA", "JPN",
	"YEM", "GRC", "PNG", "PRY", "PAK", "BRB", "BMU", "BRN", "BEL", "BGR",
	"BLZ", "BGD", "PAN", "BEN", "BWA", "PRI", "BFA", "BDI", "POL", "BOL",
	"PER", "THA", "TWN", "TKM", "TUR", "TTO", "TCD", "CHL", "TZA", "TGO",
	"TUN", "TON", "JAM", "GRL", "ANT", "VIR", "VGB", "COM", "MDV", "UMI",
	"TCA", "SLB", "FLK", "CYM", "COK", "MHL", "CXR", "CAF", "CZE", "DOM",
	"COD", "ZAF", "GEO", "SGS", "DJI", "DMA", "RWA", "RUS", "ROU", "ZMB",
	"ZWE", "WSM", "ASM", "SMR", "LCA", "SHN", "STP", "SJM", "OMN", "SVK",
	"SVN", "SGP", "SWZ", "SYR", "SUR", "CHE", "SLE", "LKA", "SYC", "SRB",
	"TJK", "GMB", "GHA", "GRD", "GTM", "GLP", "GUM", "GUY", "GUF", "GIN",
	"GNQ", "GNB", "FRA", "PSE", "VEN", "FIN", "VNM", "FJI", "CYP", "KGZ",
	"QAT", "KAZ", "NCL", "HRV", "KHM", "CAN", "CUB", "CIV", "KOR", "PRK",
	"CRI", "COL", "KEN", "REU", "LVA", "LAO", "LBN", "LUX", "LBY", "LBR",
	"LTU", "LIE", "LSO", "MTQ", "MAC", "MLT", "MLI", "MYS", "MYT", "MDG",
	"MKD", "MWI", "MNG", "MRT", "MUS", "MOZ", "MDA", "MCO", "MSR", "MMR",
	"NAM", "NPL", "NGA", "NIC", "NZL", "NIU", "HTI", "HND", "HUN", "NLD",
	"HKG", "WLF",
}

// BuildURL fills the country code into a URL template
func BuildURL(template, countryCode string) string {
	return strings.ReplaceAll(template, CountryCodePlaceholder, url.QueryEscape(countryCode))
}

// ValidCountryCode reports whether code is three upper-case ASCII letters
func ValidCountryCode(code string) bool {
	return countryCodePattern.MatchString(code)
}

// NormalizeCountryCodes upper-cases and trims codes, dropping blanks and
// repeats while keeping first-seen order.
func NormalizeCountryCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
