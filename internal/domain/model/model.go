// Package model defines the competitor and competition records harvested
// from the paginated source, plus normalization of the two result-history
// shapes that appear across dataset revisions.
package model

import (
	"encoding/json"
	"strconv"
)

// FinalRound is the round name that qualifies a result for podium counting.
const FinalRound = "Final"

// Num is a tolerant integer. Source pages occasionally carry null, float
// or string-encoded values where an integer is expected; anything that
// cannot be read as an integer decodes to zero instead of failing the
// whole record.
type Num int64

// UnmarshalJSON implements tolerant decoding for Num.
func (n *Num) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*n = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Num(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		*n = Num(int64(f))
		return nil
	}
	*n = 0
	return nil
}

// ScopeRanks holds the numeric rank of one event entry per geographic
// scope. Zero means absent.
type ScopeRanks struct {
	World     Num `json:"world" msgpack:"world"`
	Continent Num `json:"continent" msgpack:"continent"`
	Country   Num `json:"country" msgpack:"country"`
}

// RankEntry is one per-event rank declaration on a competitor.
type RankEntry struct {
	EventID string     `json:"eventId" msgpack:"event"`
	Best    Num        `json:"best" msgpack:"best"`
	Rank    ScopeRanks `json:"rank" msgpack:"rank"`
}

// Ranks groups a competitor's single and average rank entries.
type Ranks struct {
	Singles  []RankEntry `json:"singles" msgpack:"singles"`
	Averages []RankEntry `json:"averages" msgpack:"averages"`
}

// Competitor is one harvested person record. Instances are immutable
// snapshots; a new harvest replaces them wholesale.
type Competitor struct {
	ID           string `json:"id" msgpack:"id"`
	Name         string `json:"name" msgpack:"name"`
	Country      string `json:"country" msgpack:"country"`
	Competitions int    `json:"numberOfCompetitions" msgpack:"comps"`
	Rank         Ranks  `json:"rank" msgpack:"rank"`

	// Results carries the raw per-competition history in whichever of
	// the two historical shapes the page used. Decoded lazily via
	// Rounds.
	Results json.RawMessage `json:"results" msgpack:"results"`

	// FlatResults is the alternative flat history some revisions emit.
	FlatResults []FlatRound `json:"competitionResults" msgpack:"flat_results"`
}

// DateRange is a competition's from/till range (ISO dates).
type DateRange struct {
	From string `json:"from" msgpack:"from"`
	Till string `json:"till" msgpack:"till"`
}

// Competition is one harvested competition record.
type Competition struct {
	ID      string    `json:"id" msgpack:"id"`
	Country string    `json:"country" msgpack:"country"`
	Date    DateRange `json:"date" msgpack:"date"`
	Events  []string  `json:"events" msgpack:"events"`
}

// Round is the normalized form of one round result, regardless of which
// history shape it came from.
type Round struct {
	CompetitionID string
	EventID       string
	Round         string
	Position      int
	Best          int64
	Average       int64
	Date          string // set only by the flat shape; empty otherwise
}

// FlatRound is one entry of the flat history shape: a round record
// carrying its own event id and date.
type FlatRound struct {
	CompetitionID string `json:"competitionId" msgpack:"comp"`
	EventID       string `json:"eventId" msgpack:"event"`
	Round         string `json:"round" msgpack:"round"`
	Position      Num    `json:"position" msgpack:"pos"`
	Best          Num    `json:"best" msgpack:"best"`
	Average       Num    `json:"average" msgpack:"avg"`
	Date          string `json:"date" msgpack:"date"`
}

// nestedRound is one round of the nested competition->event->rounds shape.
type nestedRound struct {
	Round    string `json:"round"`
	Position Num    `json:"position"`
	Best     Num    `json:"best"`
	Average  Num    `json:"average"`
}

// Rounds normalizes the competitor's result history into a flat list.
// Both shapes are handled; malformed fragments are dropped at the
// smallest granularity rather than failing the competitor.
func (c *Competitor) Rounds() []Round {
	out := make([]Round, 0, len(c.FlatResults))
	for _, fr := range c.FlatResults {
		if fr.EventID == "" {
			continue
		}
		out = append(out, Round{
			CompetitionID: fr.CompetitionID,
			EventID:       fr.EventID,
			Round:         fr.Round,
			Position:      int(fr.Position),
			Best:          int64(fr.Best),
			Average:       int64(fr.Average),
			Date:          fr.Date,
		})
	}
	if len(c.Results) == 0 {
		return out
	}
	var nested map[string]map[string][]nestedRound
	if err := json.Unmarshal(c.Results, &nested); err != nil {
		return out
	}
	for compID, byEvent := range nested {
		for eventID, rounds := range byEvent {
			if eventID == "" {
				continue
			}
			for _, r := range rounds {
				out = append(out, Round{
					CompetitionID: compID,
					EventID:       eventID,
					Round:         r.Round,
					Position:      int(r.Position),
					Best:          int64(r.Best),
					Average:       int64(r.Average),
				})
			}
		}
	}
	return out
}

// IsPodium reports whether the round is a Final finish in positions 1-3
// with a valid (non-DNF) best or average.
func (r Round) IsPodium() bool {
	return r.Round == FinalRound &&
		r.Position >= 1 && r.Position <= 3 &&
		(r.Best > 0 || r.Average > 0)
}
