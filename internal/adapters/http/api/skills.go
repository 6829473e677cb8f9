// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// SkillsHandler serves per-skill aggregates and the tag list.
type SkillsHandler struct {
	deps SkillDependencies
}

// NewSkillsHandler creates a new skills handler.
func NewSkillsHandler(deps SkillDependencies) *SkillsHandler {
	return &SkillsHandler{deps: deps}
}

// HandleAggregates handles GET /skills requests.
func (h *SkillsHandler) HandleAggregates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Skills(r.Context()))
}

// HandleNames handles GET /skills/names requests.
func (h *SkillsHandler) HandleNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SkillNames(r.Context()))
}
