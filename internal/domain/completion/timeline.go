package completion

import (
	"sort"

	"github.com/wcanexus/nexus/internal/domain/events"
	"github.com/wcanexus/nexus/internal/domain/model"
)

// timelinePoint is one dated round in a competitor's history.
type timelinePoint struct {
	date  string // ISO date, lexically sortable
	round model.Round
}

// buildTimeline dates every round by its competition's end date (or the
// round's own date in the flat shape) and sorts chronologically.
// Undated rounds cannot be placed and are dropped from the replay.
func buildTimeline(rounds []model.Round, competitions map[string]model.Competition) []timelinePoint {
	points := make([]timelinePoint, 0, len(rounds))
	for _, r := range rounds {
		date := r.Date
		if comp, ok := competitions[r.CompetitionID]; ok && comp.Date.Till != "" {
			date = comp.Date.Till
		}
		if date == "" {
			continue
		}
		points = append(points, timelinePoint{date: date, round: r})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].date < points[j].date })
	return points
}

// progress is the requirement state accumulated while replaying a
// timeline forward.
type progress struct {
	singles     map[string]bool
	averages    map[string]bool
	wins        map[string]bool
	positions   map[string]uint8
	champPodium bool
}

func newProgress() *progress {
	return &progress{
		singles:   make(map[string]bool),
		averages:  make(map[string]bool),
		wins:      make(map[string]bool),
		positions: make(map[string]uint8),
	}
}

func (p *progress) observe(r model.Round) {
	if r.Best > 0 {
		p.singles[r.EventID] = true
	}
	if r.Average > 0 {
		p.averages[r.EventID] = true
	}
	if !r.IsPodium() {
		return
	}
	p.positions[r.EventID] |= 1 << uint(r.Position-1)
	if r.Position == 1 {
		p.wins[r.EventID] = true
	}
	if championshipID.MatchString(r.CompetitionID) {
		p.champPodium = true
	}
}

// satisfies reports whether the accumulated state meets every condition
// of cat simultaneously. Holding a world record is a property of the
// current rank snapshot, not a datable occurrence, so it is passed in
// as a constant of the replay.
func (p *progress) satisfies(cat Category, worldRecord bool) bool {
	switch cat {
	case Iridium:
		if !(worldRecord && p.champPodium && fullPodiumCoverage(p.positions)) {
			return false
		}
		fallthrough
	case Palladium:
		if !containsAll(p.wins, events.Canonical) {
			return false
		}
		fallthrough
	case Platinum:
		if !(worldRecord || p.champPodium) {
			return false
		}
		fallthrough
	case Gold:
		if cat >= Gold && !containsAll(p.averages, events.GoldAverages) {
			return false
		}
		fallthrough
	case Silver:
		if cat >= Silver && !containsAll(p.averages, events.SilverAverages) {
			return false
		}
		fallthrough
	case Bronze:
		return containsAll(p.singles, events.Canonical)
	default:
		return false
	}
}

// achievementPoint replays the competitor's chronological history and
// returns the date and triggering event of the first point at which the
// already-determined tier's full requirement set holds. When the replay
// never converges (history gaps), it falls back to the last dated round.
func achievementPoint(cat Category, worldRecord bool, rounds []model.Round, competitions map[string]model.Competition) (string, string) {
	points := buildTimeline(rounds, competitions)
	if len(points) == 0 {
		return "", ""
	}
	p := newProgress()
	for _, pt := range points {
		p.observe(pt.round)
		if p.satisfies(cat, worldRecord) {
			return pt.date, pt.round.EventID
		}
	}
	last := points[len(points)-1]
	return last.date, last.round.EventID
}
