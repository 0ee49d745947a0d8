// Package rank builds and queries the multi-scope rank lookup index:
// scope -> event -> result type -> rank number -> (competitor, result).
package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wcanexus/nexus/internal/domain/model"
)

// Result type keys.
const (
	TypeSingles  = "singles"
	TypeAverages = "averages"
)

// ScopeWorld is the scope key for world ranks. Continent scopes use
// normalized continent names, country scopes the lowercase iso2 code.
const ScopeWorld = "world"

// Cell is the value stored per rank number.
type Cell struct {
	CompetitorID string
	Best         int64
}

type bucket map[int]Cell

// Index is the built lookup structure. It is immutable once built;
// rebuilds produce a fresh Index that is swapped in atomically by the
// owning service.
type Index struct {
	scopes map[string]map[string]map[string]bucket
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{scopes: make(map[string]map[string]map[string]bucket)}
}

// Build constructs the index from a harvested competitor snapshot.
// countryContinent maps lowercase iso2 codes to continent names; a
// competitor without a mapping is skipped for the continent scope only.
func Build(competitors map[string]model.Competitor, countryContinent map[string]string) *Index {
	idx := NewIndex()
	for _, c := range competitors {
		if c.ID == "" {
			continue
		}
		country := strings.ToLower(c.Country)
		continent := countryContinent[country]

		insertEntries := func(typ string, entries []model.RankEntry) {
			for _, e := range entries {
				if e.EventID == "" {
					continue
				}
				idx.insert(ScopeWorld, e.EventID, typ, int(e.Rank.World), c.ID, int64(e.Best))
				if continent != "" {
					idx.insert(continent, e.EventID, typ, int(e.Rank.Continent), c.ID, int64(e.Best))
				}
				if country != "" {
					idx.insert(country, e.EventID, typ, int(e.Rank.Country), c.ID, int64(e.Best))
				}
			}
		}
		insertEntries(TypeSingles, c.Rank.Singles)
		insertEntries(TypeAverages, c.Rank.Averages)
	}
	return idx
}

// insert stores one cell, skipping non-positive rank numbers. On the
// (malformed-data) case of two competitors claiming the same slot the
// lexicographically smaller id wins, keeping rebuilds deterministic.
func (i *Index) insert(scope, eventID, typ string, rankNum int, competitorID string, best int64) {
	if rankNum <= 0 {
		return
	}
	byEvent, ok := i.scopes[scope]
	if !ok {
		byEvent = make(map[string]map[string]bucket)
		i.scopes[scope] = byEvent
	}
	byType, ok := byEvent[eventID]
	if !ok {
		byType = make(map[string]bucket)
		byEvent[eventID] = byType
	}
	b, ok := byType[typ]
	if !ok {
		b = make(bucket)
		byType[typ] = b
	}
	if prev, exists := b[rankNum]; exists && prev.CompetitorID <= competitorID {
		return
	}
	b[rankNum] = Cell{CompetitorID: competitorID, Best: best}
}

// Size returns the total number of stored cells.
func (i *Index) Size() int {
	n := 0
	for _, byEvent := range i.scopes {
		for _, byType := range byEvent {
			for _, b := range byType {
				n += len(b)
			}
		}
	}
	return n
}

// Scopes returns the scope keys present in the index.
func (i *Index) Scopes() []string {
	out := make([]string, 0, len(i.scopes))
	for s := range i.scopes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Result is one lookup answer. Note is non-empty when a nearest-rank
// fallback occurred.
type Result struct {
	Requested    int
	Actual       int
	CompetitorID string
	Best         int64
	Note         string
}

// Lookup resolves a rank request over one or more scopes. The buckets
// of each requested scope are unioned in order (later scopes overwrite
// equal rank numbers). An exact match is preferred; otherwise the
// greatest available rank at or below the request, otherwise the
// smallest available rank, each with an explanatory note.
func (i *Index) Lookup(scopes []string, eventID, resultType string, rankNum int) (Result, error) {
	combined := make(bucket)
	for _, s := range scopes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		byEvent, ok := i.scopes[s]
		if !ok {
			continue
		}
		if b, ok := byEvent[eventID][resultType]; ok {
			for k, v := range b {
				combined[k] = v
			}
		}
	}
	if len(combined) == 0 {
		return Result{}, fmt.Errorf("%w: event %s in scopes %s", ErrNotFound, eventID, strings.Join(scopes, ","))
	}

	if cell, ok := combined[rankNum]; ok {
		return Result{Requested: rankNum, Actual: rankNum, CompetitorID: cell.CompetitorID, Best: cell.Best}, nil
	}

	available := make([]int, 0, len(combined))
	for k := range combined {
		available = append(available, k)
	}
	sort.Ints(available)

	actual := available[0]
	for j := len(available) - 1; j >= 0; j-- {
		if available[j] <= rankNum {
			actual = available[j]
			break
		}
	}
	cell := combined[actual]
	return Result{
		Requested:    rankNum,
		Actual:       actual,
		CompetitorID: cell.CompetitorID,
		Best:         cell.Best,
		Note:         fmt.Sprintf("Requested rank #%d not available. Returning closest available rank #%d.", rankNum, actual),
	}, nil
}
