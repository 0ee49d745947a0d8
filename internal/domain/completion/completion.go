// Package completion classifies competitors into ordered completionist
// tiers and resolves the date each competitor's tier was first achieved.
package completion

import (
	"regexp"
	"sort"

	"github.com/wcanexus/nexus/internal/domain/events"
	"github.com/wcanexus/nexus/internal/domain/model"
)

// championshipID matches world championship competition ids (WC2019...).
var championshipID = regexp.MustCompile(`^WC\d{4}`)

// Record is one classified competitor.
type Record struct {
	CompetitorID string `json:"id" msgpack:"id"`
	Name         string `json:"name" msgpack:"name"`
	Country      string `json:"country" msgpack:"country"`
	Category     string `json:"category" msgpack:"category"`
	AchievedOn   string `json:"competitionDate" msgpack:"achieved_on"`
	EventID      string `json:"lastEvent" msgpack:"event"`
}

// facts is everything the tier predicates need about one competitor.
type facts struct {
	singles     map[string]bool // events with a valid single
	averages    map[string]bool // events with a valid average
	wins        map[string]bool // events won in a Final
	positions   map[string]uint8 // bitmask of Final positions 1..3 achieved
	worldRecord bool             // holds a current world rank #1
	champPodium bool             // podium at a world championship
}

func gatherFacts(c model.Competitor, rounds []model.Round) facts {
	f := facts{
		singles:   make(map[string]bool),
		averages:  make(map[string]bool),
		wins:      make(map[string]bool),
		positions: make(map[string]uint8),
	}
	for _, e := range c.Rank.Singles {
		if e.EventID != "" && e.Best > 0 {
			f.singles[e.EventID] = true
		}
		if e.Rank.World == 1 {
			f.worldRecord = true
		}
	}
	for _, e := range c.Rank.Averages {
		if e.EventID != "" && e.Best > 0 {
			f.averages[e.EventID] = true
		}
		if e.Rank.World == 1 {
			f.worldRecord = true
		}
	}
	for _, r := range rounds {
		if !r.IsPodium() {
			continue
		}
		f.positions[r.EventID] |= 1 << uint(r.Position-1)
		if r.Position == 1 {
			f.wins[r.EventID] = true
		}
		if championshipID.MatchString(r.CompetitionID) {
			f.champPodium = true
		}
	}
	return f
}

func containsAll(have map[string]bool, want []string) bool {
	for _, e := range want {
		if !have[e] {
			return false
		}
	}
	return true
}

// classify returns the highest tier the facts satisfy.
func classify(f facts) Category {
	if !containsAll(f.singles, events.Canonical) {
		return None
	}
	cat := Bronze
	if !containsAll(f.averages, events.SilverAverages) {
		return cat
	}
	cat = Silver
	if !containsAll(f.averages, events.GoldAverages) {
		return cat
	}
	cat = Gold
	if !(f.worldRecord || f.champPodium) {
		return cat
	}
	cat = Platinum
	if !containsAll(f.wins, events.Canonical) {
		return cat
	}
	cat = Palladium
	if !(f.worldRecord && f.champPodium && fullPodiumCoverage(f.positions)) {
		return cat
	}
	return Iridium
}

// fullPodiumCoverage reports whether positions 1, 2 and 3 have each
// been achieved in every canonical event.
func fullPodiumCoverage(positions map[string]uint8) bool {
	for _, e := range events.Canonical {
		if positions[e] != 0b111 {
			return false
		}
	}
	return true
}

// Classify computes the tier and achievement point for one competitor.
// The second return is false when the competitor is not a completionist.
func Classify(c model.Competitor, competitions map[string]model.Competition) (Record, bool) {
	rounds := c.Rounds()
	f := gatherFacts(c, rounds)
	cat := classify(f)
	if cat == None {
		return Record{}, false
	}
	date, event := achievementPoint(cat, f.worldRecord, rounds, competitions)
	return Record{
		CompetitorID: c.ID,
		Name:         c.Name,
		Country:      c.Country,
		Category:     cat.String(),
		AchievedOn:   date,
		EventID:      event,
	}, true
}

// BuildAll classifies every competitor in the snapshot, returning
// records sorted by tier (highest first) then competitor id.
func BuildAll(competitors map[string]model.Competitor, competitions map[string]model.Competition) []Record {
	var out []Record
	for _, c := range competitors {
		if rec, ok := Classify(c, competitions); ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, _ := ParseCategory(out[i].Category)
		cj, _ := ParseCategory(out[j].Category)
		if ci != cj {
			return ci > cj
		}
		return out[i].CompetitorID < out[j].CompetitorID
	})
	return out
}
