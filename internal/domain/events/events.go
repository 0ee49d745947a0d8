// Package events holds the canonical WCA event catalogue and the fixed
// event sets that rank, podium and completionist logic are defined over.
package events

// Names maps event ids to display names, including retired events.
var Names = map[string]string{
	"333":    "3x3 Cube",
	"222":    "2x2 Cube",
	"444":    "4x4 Cube",
	"555":    "5x5 Cube",
	"666":    "6x6 Cube",
	"777":    "7x7 Cube",
	"333oh":  "3x3 One-Handed",
	"333bf":  "3x3 Blindfolded",
	"333fm":  "3x3 Fewest Moves",
	"clock":  "Rubik's Clock",
	"minx":   "Megaminx",
	"pyram":  "Pyraminx",
	"skewb":  "Skewb",
	"sq1":    "Square-1",
	"444bf":  "4x4 Blindfolded",
	"555bf":  "5x5 Blindfolded",
	"333mbf": "3x3 Multi-Blind",
	"333mbo": "3x3 Multi-Blind Old Style",
	"magic":  "Magic Cube",
	"mmagic": "Master Magic Cube",
	"333ft":  "3x3 With Feet",
}

// Legacy lists retired or non-standard events. Their presence in a
// competitor's history never counts against an exact-set match, and a
// query consisting only of legacy events matches nobody.
var Legacy = map[string]struct{}{
	"magic":  {},
	"mmagic": {},
	"333ft":  {},
	"333mbo": {},
}

// Canonical is the full single-result event set a Bronze completionist
// must have a valid result in.
var Canonical = []string{
	"333", "222", "444", "555", "666", "777", "333oh", "333bf", "333fm",
	"clock", "minx", "pyram", "skewb", "sq1", "444bf", "555bf", "333mbf",
}

// SilverAverages is the average-result event set required for Silver.
var SilverAverages = []string{
	"333", "222", "444", "555", "666", "777", "333oh",
	"minx", "pyram", "skewb", "sq1", "clock",
}

// GoldAverages extends SilverAverages with the blind and fewest-moves
// events that carry official averages.
var GoldAverages = append(append([]string{}, SilverAverages...),
	"333bf", "333fm", "444bf", "555bf")

// IsLegacy reports whether id is a retired or non-standard event.
func IsLegacy(id string) bool {
	_, ok := Legacy[id]
	return ok
}

// Name returns the display name for an event id, or the id itself when
// the event is unknown.
func Name(id string) string {
	if n, ok := Names[id]; ok {
		return n
	}
	return id
}

// StripLegacy returns the subset of ids that are not legacy events.
func StripLegacy(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" || IsLegacy(id) {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}
