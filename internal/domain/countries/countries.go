// Package countries maps IOC nation codes to English country names.
package countries

// names is the static IOC code table used when labelling national teams.
var names = map[string]string{
	"GER": "Germany",
	"FRA": "France",
	"GBR": "Great Britain",
	"USA": "United States",
	"NED": "Netherlands",
	"BEL": "Belgium",
	"SUI": "Switzerland",
	"SWE": "Sweden",
	"ITA": "Italy",
	"ESP": "Spain",
	"AUT": "Austria",
	"IRL": "Ireland",
	"CAN": "Canada",
	"AUS": "Australia",
	"NZL": "New Zealand",
	"JPN": "Japan",
	"BRA": "Brazil",
	"ARG": "Argentina",
	"CHI": "Chile",
	"MEX": "Mexico",
	"NOR": "Norway",
	"DEN": "Denmark",
	"FIN": "Finland",
	"POL": "Poland",
	"CZE": "Czech Republic",
	"HUN": "Hungary",
	"POR": "Portugal",
	"RUS": "Russia",
	"UKR": "Ukraine",
	"RSA": "South Africa",
	"UAE": "United Arab Emirates",
	"KSA": "Saudi Arabia",
	"QAT": "Qatar",
	"HKG": "Hong Kong",
	"SGP": "Singapore",
	"IND": "India",
	"COL": "Colombia",
	"VEN": "Venezuela",
	"URY": "Uruguay",
	"ECU": "Ecuador",
	"ISR": "Israel",
	"TUR": "Turkey",
	"GRE": "Greece",
	"EGY": "Egypt",
	"MAR": "Morocco",
	"KOR": "South Korea",
	"TPE": "Chinese Taipei",
	"LUX": "Luxembourg",
	"EST": "Estonia",
	"LAT": "Latvia",
	"LTU": "Lithuania",
	"SVK": "Slovakia",
	"SLO": "Slovenia",
	"CRO": "Croatia",
	"BUL": "Bulgaria",
	"ROU": "Romania",
}

// Name returns the English name for an IOC code.
func Name(code string) (string, bool) {
	n, ok := names[code]
	return n, ok
}
