// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/candidateboard/internal/adapters/export"
	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/query"
	"github.com/okian/candidateboard/internal/domain/types"
	"github.com/okian/candidateboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CandidateDependencies
	SkillDependencies
	RegenerateDependencies
	ExportDependencies
	StatsProvider
}

// CandidateDependencies serves the leaderboard views.
type CandidateDependencies interface {
	Query(ctx context.Context, p query.Params) query.Page
	Candidate(ctx context.Context, id int) (types.Card, error)
}

// SkillDependencies serves the skill views.
type SkillDependencies interface {
	Skills(ctx context.Context) []model.SkillAggregate
	SkillNames(ctx context.Context) []string
}

// RegenerateDependencies replaces the candidate list.
type RegenerateDependencies interface {
	Regenerate(ctx context.Context, n int) (types.Generation, error)
}

// ExportDependencies renders downloads.
type ExportDependencies interface {
	Export(ctx context.Context, f export.Format) ([]byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	candidatesHandler *CandidatesHandler
	skillsHandler     *SkillsHandler
	regenerateHandler *RegenerateHandler
	exportHandler     *ExportHandler

	logger logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		candidatesHandler: NewCandidatesHandler(deps, cfg.maxPageSize),
		skillsHandler:     NewSkillsHandler(deps),
		regenerateHandler: NewRegenerateHandler(deps, cfg.maxRegenerate),
		exportHandler:     NewExportHandler(deps),
		logger:            cfg.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", s.route(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", s.route(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/candidates", s.route(s.candidatesHandler.HandleList, "candidates"))
	mux.HandleFunc("/candidates/", s.route(s.candidatesHandler.HandleGet, "candidate"))
	mux.HandleFunc("/skills", s.route(s.skillsHandler.HandleAggregates, "skills"))
	mux.HandleFunc("/skills/names", s.route(s.skillsHandler.HandleNames, "skill_names"))
	mux.HandleFunc("/regenerate", s.route(s.regenerateHandler.HandleRegenerate, "regenerate"))
	mux.HandleFunc("/export/", s.route(s.exportHandler.HandleExport, "export"))
}

func (s *Server) route(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(LoggingMiddleware(s.logger, MetricsMiddleware(h, endpoint), endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
