package harvest

import (
	"encoding/json"

	"github.com/wcanexus/nexus/internal/domain/model"
)

// MergeCompetitors decodes raw page records into a competitor map keyed
// by id. The merge is a pure set union: duplicates keep the first-seen
// record, record-level decode failures drop that record only, so the
// final set is independent of page arrival order.
func MergeCompetitors(items []json.RawMessage) map[string]model.Competitor {
	out := make(map[string]model.Competitor, len(items))
	for _, raw := range items {
		var c model.Competitor
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		if c.ID == "" {
			continue
		}
		if _, seen := out[c.ID]; seen {
			continue
		}
		out[c.ID] = c
	}
	return out
}

// MergeCompetitions decodes raw page records into a competition map
// keyed by id, with the same set-union semantics as MergeCompetitors.
func MergeCompetitions(items []json.RawMessage) map[string]model.Competition {
	out := make(map[string]model.Competition, len(items))
	for _, raw := range items {
		var c model.Competition
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		if c.ID == "" {
			continue
		}
		if _, seen := out[c.ID]; seen {
			continue
		}
		out[c.ID] = c
	}
	return out
}
