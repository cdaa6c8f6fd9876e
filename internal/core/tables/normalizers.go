package tables

import (
	"strings"

	"github.com/JonMunkholm/gridview/internal/core"
)

// stateCodes maps US state full names to their abbreviations.
var stateCodes = map[string]string{
	"alabama":        "AL",
	"alaska":         "AK",
	"arizona":        "AZ",
	"arkansas":       "AR",
	"california":     "CA",
	"colorado":       "CO",
	"connecticut":    "CT",
	"delaware":       "DE",
	"florida":        "FL",
	"georgia":        "GA",
	"hawaii":         "HI",
	"idaho":          "ID",
	"illinois":       "IL",
	"indiana":        "IN",
	"iowa":           "IA",
	"kansas":         "KS",
	"kentucky":       "KY",
	"louisiana":      "LA",
	"maine":          "ME",
	"maryland":       "MD",
	"massachusetts":  "MA",
	"michigan":       "MI",
	"minnesota":      "MN",
	"mississippi":    "MS",
	"missouri":       "MO",
	"montana":        "MT",
	"nebraska":       "NE",
	"nevada":         "NV",
	"new hampshire":  "NH",
	"new jersey":     "NJ",
	"new mexico":     "NM",
	"new york":       "NY",
	"north carolina": "NC",
	"north dakota":   "ND",
	"ohio":           "OH",
	"oklahoma":       "OK",
	"oregon":         "OR",
	"pennsylvania":   "PA",
	"rhode island":   "RI",
	"south carolina": "SC",
	"south dakota":   "SD",
	"tennessee":      "TN",
	"texas":          "TX",
	"utah":           "UT",
	"vermont":        "VT",
	"virginia":       "VA",
	"washington":     "WA",
	"west virginia":  "WV",
	"wisconsin":      "WI",
	"wyoming":        "WY",
}

// StateCode converts a US state name to its 2-letter abbreviation.
// Abbreviations are upper-cased; unrecognized input is returned trimmed.
func StateCode(s string) string {
	s = strings.TrimSpace(s)
	if code, ok := stateCodes[strings.ToLower(s)]; ok {
		return code
	}

	upper := strings.ToUpper(s)
	for _, code := range stateCodes {
		if upper == code {
			return code
		}
	}
	return s
}

// normalizeField rewrites one string field of every row in place.
func normalizeField(rows []core.Row, field string, fn func(string) string) {
	for _, r := range rows {
		if s, ok := r[field].(string); ok {
			r[field] = fn(s)
		}
	}
}
