// Package geo builds the country-to-continent mapping used for
// continent-scope rank entries.
package geo

import (
	"encoding/json"
	"strings"
)

// regionNames maps WCA region ids to normalized continent names.
var regionNames = map[string]string{
	"XW": "world",
	"XA": "asia",
	"XE": "europe",
	"XF": "africa",
	"XN": "north_america",
	"XS": "south_america",
	"XO": "oceania",
}

// isoContinents covers the plain two-letter continent ids seen in older
// dataset revisions.
var isoContinents = map[string]string{
	"AF": "africa",
	"AS": "asia",
	"EU": "europe",
	"NA": "north_america",
	"SA": "south_america",
	"OC": "oceania",
}

// countryRecord is the relevant slice of one countries.json entry.
type countryRecord struct {
	ISO2        string `json:"iso2Code"`
	ContinentID string `json:"continentId"`
}

// ContinentName normalizes a continent id of either convention to its
// name. Unknown ids are lowercased and passed through.
func ContinentName(id string) string {
	up := strings.ToUpper(id)
	if n, ok := regionNames[up]; ok {
		return n
	}
	if n, ok := isoContinents[up]; ok {
		return n
	}
	return strings.ToLower(id)
}

// BuildCountryContinents decodes countries.json records into a map from
// lowercase iso2 country code to normalized continent name. Records
// missing either field are skipped.
func BuildCountryContinents(records []json.RawMessage) map[string]string {
	out := make(map[string]string, len(records))
	for _, raw := range records {
		var rec countryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if rec.ISO2 == "" || rec.ContinentID == "" {
			continue
		}
		out[strings.ToLower(rec.ISO2)] = ContinentName(rec.ContinentID)
	}
	return out
}
