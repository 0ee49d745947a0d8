// Package podium builds the per-competitor podium-count index and the
// exact-set "specialist" query over it.
package podium

import (
	"sort"

	"github.com/wcanexus/nexus/internal/domain/events"
	"github.com/wcanexus/nexus/internal/domain/model"
)

// Index holds podium counts per competitor and event, plus a reverse
// index from event to podium holders. Immutable once built.
type Index struct {
	counts  map[string]map[string]int
	byEvent map[string][]string
}

// Build scans every normalized round of every competitor's history. A
// round counts as a podium when it is a Final finish in positions 1-3
// with a positive best or average.
func Build(competitors map[string]model.Competitor) *Index {
	idx := &Index{
		counts:  make(map[string]map[string]int),
		byEvent: make(map[string][]string),
	}
	for id, c := range competitors {
		for _, r := range c.Rounds() {
			if !r.IsPodium() {
				continue
			}
			byEvent, ok := idx.counts[id]
			if !ok {
				byEvent = make(map[string]int)
				idx.counts[id] = byEvent
			}
			byEvent[r.EventID]++
		}
	}
	for id, byEvent := range idx.counts {
		for event := range byEvent {
			idx.byEvent[event] = append(idx.byEvent[event], id)
		}
	}
	for event := range idx.byEvent {
		sort.Strings(idx.byEvent[event])
	}
	return idx
}

// Count returns the podium count for a competitor and event.
func (i *Index) Count(competitorID, eventID string) int {
	return i.counts[competitorID][eventID]
}

// EventsOf returns the sorted set of events a competitor has podiumed in.
func (i *Index) EventsOf(competitorID string) []string {
	byEvent := i.counts[competitorID]
	out := make([]string, 0, len(byEvent))
	for event := range byEvent {
		out = append(out, event)
	}
	sort.Strings(out)
	return out
}

// Competitors returns the number of competitors with at least one podium.
func (i *Index) Competitors() int {
	return len(i.counts)
}

// Specialists returns the ids of competitors whose podium event-set is
// exactly the requested set. Legacy events never disqualify a match:
// extras inside the legacy allow-list are tolerated, and legacy ids in
// the request are ignored. A request that reduces to the empty set
// matches nobody.
func (i *Index) Specialists(eventIDs []string) []string {
	requested := events.StripLegacy(eventIDs)
	if len(requested) == 0 {
		return nil
	}

	// Candidates must hold a podium in every requested event; start
	// from the smallest reverse-index bucket.
	var seed []string
	for event := range requested {
		bucket, ok := i.byEvent[event]
		if !ok {
			return nil
		}
		if seed == nil || len(bucket) < len(seed) {
			seed = bucket
		}
	}

	var out []string
	for _, id := range seed {
		byEvent := i.counts[id]
		match := true
		for event := range requested {
			if byEvent[event] == 0 {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		for event := range byEvent {
			if _, ok := requested[event]; !ok && !events.IsLegacy(event) {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
