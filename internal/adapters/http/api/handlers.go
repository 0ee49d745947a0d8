package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wcanexus/nexus/internal/domain/events"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports readiness: 200 once the first build completed,
// 503 while loading.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "loading"})
		return
	}
	body := map[string]interface{}{"status": "ready"}
	for k, v := range s.deps.Stats() {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// handleFindRank handles GET /api/find-rank/{scope}/{event}/{type}/{rank}.
// Scope may be a comma-joined list.
func (s *Server) handleFindRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/find-rank/"), "/")
	if len(parts) != 4 {
		writeQueryError(w, fmt.Errorf("%w: expected /api/find-rank/{scope}/{event}/{type}/{rank}", ErrBadRequest))
		return
	}
	rankNum, err := strconv.Atoi(parts[3])
	if err != nil {
		writeQueryError(w, fmt.Errorf("%w: rank must be an integer", ErrBadRequest))
		return
	}
	scopes := splitList(parts[0])
	answer, err := s.deps.LookupRank(r.Context(), scopes, parts[1], parts[2], rankNum)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSpecialists(w http.ResponseWriter, r *http.Request) {
	ids := splitList(r.URL.Query().Get("events"))
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, []Specialist{})
		return
	}
	out, err := s.deps.FindSpecialists(r.Context(), ids)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if out == nil {
		out = []Specialist{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	ids := splitList(r.URL.Query().Get("events"))
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, []EventSetMatch{})
		return
	}
	out, err := s.deps.FindByEventSet(r.Context(), ids)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if out == nil {
		out = []EventSetMatch{}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompletionists handles /api/completionists and
// /api/completionists/{category}.
func (s *Server) handleCompletionists(w http.ResponseWriter, r *http.Request) {
	category := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/completionists"), "/")
	out, err := s.deps.ListCompletionists(r.Context(), category)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.SearchCompetitor(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if out == nil {
		out = []Person{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompetitions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partial := !strings.EqualFold(q.Get("partial"), "false")
	out, err := s.deps.FindCompetitions(r.Context(), splitList(q.Get("events")), partial)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEvents serves the static event catalogue; it does not depend on
// the readiness gate.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Names)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
