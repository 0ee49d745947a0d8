// Package api declares the read-only HTTP façade over the engine's
// query surface. It renders JSON only; every handler answers 503 with
// a distinct still-loading body until the readiness gate opens.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wcanexus/nexus/internal/app"
	"github.com/wcanexus/nexus/internal/domain/completion"
	"github.com/wcanexus/nexus/internal/domain/model"
)

// Read shapes re-exported from the service layer.
type (
	Person        = app.Person
	RankAnswer    = app.RankAnswer
	Specialist    = app.Specialist
	EventSetMatch = app.EventSetMatch
)

// Dependencies bundles the query methods the handlers need. Keeping it
// an interface decouples the handler layer from the service package.
type Dependencies interface {
	Ready() bool
	Stats() map[string]interface{}
	LookupRank(ctx context.Context, scopes []string, eventID, resultType string, rankNum int) (RankAnswer, error)
	FindSpecialists(ctx context.Context, eventIDs []string) ([]Specialist, error)
	FindByEventSet(ctx context.Context, eventIDs []string) ([]EventSetMatch, error)
	ListCompletionists(ctx context.Context, category string) ([]completion.Record, error)
	SearchCompetitor(ctx context.Context, query string) ([]Person, error)
	FindCompetitions(ctx context.Context, eventIDs []string, partial bool) ([]model.Competition, error)
}

// Server wires HTTP routes for the query API.
type Server struct {
	deps Dependencies
}

// NewServer creates the API server.
func NewServer(deps Dependencies) *Server {
	return &Server{deps: deps}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/api/status", MetricsMiddleware(s.handleStatus, "status"))
	mux.HandleFunc("/api/find-rank/", MetricsMiddleware(s.handleFindRank, "find_rank"))
	mux.HandleFunc("/api/specialists", MetricsMiddleware(s.handleSpecialists, "specialists"))
	mux.HandleFunc("/api/competitors", MetricsMiddleware(s.handleCompetitors, "competitors"))
	mux.HandleFunc("/api/completionists", MetricsMiddleware(s.handleCompletionists, "completionists"))
	mux.HandleFunc("/api/completionists/", MetricsMiddleware(s.handleCompletionists, "completionists"))
	mux.HandleFunc("/api/search-competitor", MetricsMiddleware(s.handleSearch, "search_competitor"))
	mux.HandleFunc("/api/competitions", MetricsMiddleware(s.handleCompetitions, "competitions"))
	mux.HandleFunc("/api/events", MetricsMiddleware(s.handleEvents, "events"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeQueryError translates service sentinels into HTTP statuses,
// keeping "still loading" distinct from "not found".
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Data is still loading, please wait."})
	case errors.Is(err, app.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, app.ErrInvalidArgument), errors.Is(err, ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}
