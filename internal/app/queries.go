package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wcanexus/nexus/internal/domain/completion"
	"github.com/wcanexus/nexus/internal/domain/events"
	"github.com/wcanexus/nexus/internal/domain/model"
	"github.com/wcanexus/nexus/internal/index/rank"
	"github.com/wcanexus/nexus/pkg/metrics"
)

// maxCompetitionResults caps competition filter answers.
const maxCompetitionResults = 100

// maxEventSetResults caps exact event-set matches.
const maxEventSetResults = 1000

// Person is the read shape for competitor summaries.
type Person struct {
	ID           string `json:"wcaId"`
	Name         string `json:"name"`
	Country      string `json:"countryIso2"`
	Competitions int    `json:"numberOfCompetitions,omitempty"`
}

// RankAnswer is the read shape of a rank lookup. Note is non-empty when
// a nearest-rank fallback occurred.
type RankAnswer struct {
	RequestedRank int    `json:"requestedRank"`
	ActualRank    int    `json:"actualRank"`
	Person        Person `json:"person"`
	Result        int64  `json:"result"`
	Note          string `json:"note,omitempty"`
}

// Specialist is one exact podium-set match.
type Specialist struct {
	Person
	PodiumEvents map[string]int `json:"podiumEvents"`
}

// EventSetMatch is one exact rank-event-set match.
type EventSetMatch struct {
	Person
	CompletedEvents []string `json:"completedEvents"`
}

func (s *Service) ensureReady() error {
	if !s.gate.Ready() {
		return ErrNotReady
	}
	return nil
}

func (s *Service) person(id string) Person {
	c, ok := s.competitors[id]
	if !ok {
		return Person{ID: id}
	}
	return Person{ID: c.ID, Name: c.Name, Country: c.Country, Competitions: c.Competitions}
}

// LookupRank resolves a rank request across one or more scopes. Exact
// matches are preferred; otherwise the nearest rank at or below the
// request, otherwise the smallest available, each with a note.
func (s *Service) LookupRank(ctx context.Context, scopes []string, eventID, resultType string, rankNum int) (RankAnswer, error) {
	if err := s.ensureReady(); err != nil {
		return RankAnswer{}, err
	}
	if resultType != rank.TypeSingles && resultType != rank.TypeAverages {
		return RankAnswer{}, fmt.Errorf("%w: ranking type %q", ErrInvalidArgument, resultType)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res, err := s.rankIdx.Lookup(scopes, eventID, resultType, rankNum)
	if err != nil {
		return RankAnswer{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if res.Note != "" {
		metrics.RecordLookupFallback()
	}
	return RankAnswer{
		RequestedRank: res.Requested,
		ActualRank:    res.Actual,
		Person:        s.person(res.CompetitorID),
		Result:        res.Best,
		Note:          res.Note,
	}, nil
}

// FindSpecialists returns competitors whose podium event-set is exactly
// the requested set, legacy events aside.
func (s *Service) FindSpecialists(ctx context.Context, eventIDs []string) ([]Specialist, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.podiumIdx.Specialists(eventIDs)
	out := make([]Specialist, 0, len(ids))
	for _, id := range ids {
		podiums := make(map[string]int)
		for _, event := range s.podiumIdx.EventsOf(id) {
			podiums[event] = s.podiumIdx.Count(id, event)
		}
		out = append(out, Specialist{Person: s.person(id), PodiumEvents: podiums})
	}
	return out, nil
}

// FindByEventSet returns competitors whose set of ranked events (singles
// and averages combined, legacy events aside) is exactly the requested
// set.
func (s *Service) FindByEventSet(ctx context.Context, eventIDs []string) ([]EventSetMatch, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	requested := events.StripLegacy(eventIDs)
	if len(requested) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []EventSetMatch
	for _, c := range s.competitors {
		completed := rankedEvents(c)
		if !setsEqualModuloLegacy(completed, requested) {
			continue
		}
		all := make([]string, 0, len(completed))
		for e := range completed {
			all = append(all, e)
		}
		sort.Strings(all)
		out = append(out, EventSetMatch{
			Person:          Person{ID: c.ID, Name: c.Name, Country: c.Country, Competitions: c.Competitions},
			CompletedEvents: all,
		})
	}
	// Sort before capping so the surviving matches do not depend on map
	// iteration order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > maxEventSetResults {
		out = out[:maxEventSetResults]
	}
	return out, nil
}

// ListCompletionists returns classified competitors, optionally
// filtered by tier name ("all" or empty returns everything).
func (s *Service) ListCompletionists(ctx context.Context, category string) ([]completion.Record, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if category == "" || strings.EqualFold(category, "all") {
		out := make([]completion.Record, len(s.completionists))
		copy(out, s.completionists)
		return out, nil
	}
	want, ok := completion.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: category %q", ErrInvalidArgument, category)
	}
	var out []completion.Record
	for _, rec := range s.completionists {
		if got, _ := completion.ParseCategory(rec.Category); got == want {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SearchCompetitor finds competitors by case-insensitive name fragment.
func (s *Service) SearchCompetitor(ctx context.Context, query string) ([]Person, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Person
	for _, c := range s.competitors {
		if strings.Contains(strings.ToLower(c.Name), query) {
			out = append(out, Person{ID: c.ID, Name: c.Name, Country: c.Country, Competitions: c.Competitions})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > s.maxSearchResults {
		out = out[:s.maxSearchResults]
	}
	return out, nil
}

// FindCompetitions filters competitions by held events, most recent
// first. Partial mode requires the competition to hold at least the
// requested events; exact mode requires the event lists to match.
func (s *Service) FindCompetitions(ctx context.Context, eventIDs []string, partial bool) ([]model.Competition, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	requested := events.StripLegacy(eventIDs)

	s.mu.RLock()
	defer s.mu.RUnlock()
	comps := make([]model.Competition, 0, len(s.competitions))
	for _, c := range s.competitions {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool {
		if comps[i].Date.From != comps[j].Date.From {
			return comps[i].Date.From > comps[j].Date.From
		}
		return comps[i].ID < comps[j].ID
	})

	if len(requested) == 0 {
		if len(comps) > maxCompetitionResults {
			comps = comps[:maxCompetitionResults]
		}
		return comps, nil
	}

	var out []model.Competition
	for _, c := range comps {
		held := make(map[string]struct{}, len(c.Events))
		for _, e := range c.Events {
			held[e] = struct{}{}
		}
		if partial {
			if containsSet(held, requested) {
				out = append(out, c)
			}
		} else if len(held) == len(requested) && containsSet(held, requested) {
			out = append(out, c)
		}
		if len(out) >= maxCompetitionResults {
			break
		}
	}
	return out, nil
}

func containsSet(have map[string]struct{}, want map[string]struct{}) bool {
	for e := range want {
		if _, ok := have[e]; !ok {
			return false
		}
	}
	return true
}

// rankedEvents is the set of events a competitor holds any rank entry
// in, legacy events included.
func rankedEvents(c model.Competitor) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range c.Rank.Singles {
		if e.EventID != "" {
			out[e.EventID] = struct{}{}
		}
	}
	for _, e := range c.Rank.Averages {
		if e.EventID != "" {
			out[e.EventID] = struct{}{}
		}
	}
	return out
}

// setsEqualModuloLegacy reports whether completed, after dropping
// legacy events, equals requested (which is already legacy-free).
func setsEqualModuloLegacy(completed map[string]struct{}, requested map[string]struct{}) bool {
	n := 0
	for e := range completed {
		if events.IsLegacy(e) {
			continue
		}
		if _, ok := requested[e]; !ok {
			return false
		}
		n++
	}
	return n == len(requested)
}
