// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	service "github.com/okian/candidateboard/internal/app"
	"github.com/okian/candidateboard/internal/domain/query"
)

// CandidatesHandler serves the leaderboard list and candidate details.
type CandidatesHandler struct {
	deps        CandidateDependencies
	maxPageSize int
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps CandidateDependencies, maxPageSize int) *CandidatesHandler {
	return &CandidatesHandler{deps: deps, maxPageSize: maxPageSize}
}

// HandleList handles GET /candidates?q=&skills=a,b&sort=&order=&page=&page_size= requests.
func (h *CandidatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	params, err := h.parseParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Query(r.Context(), params))
}

// HandleGet handles GET /candidates/{id} requests.
func (h *CandidatesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	// Extract path parameter after /candidates/
	path := strings.TrimPrefix(r.URL.Path, "/candidates/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id, err := strconv.Atoi(path)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid candidate id %q", ErrBadRequest, path))
		return
	}
	card, err := h.deps.Candidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *CandidatesHandler) parseParams(v url.Values) (query.Params, error) {
	p := query.Params{
		Search: v.Get("q"),
		Skills: splitList(v["skills"]),
		SortBy: v.Get("sort"),
		Order:  strings.ToLower(strings.TrimSpace(v.Get("order"))),
	}

	if p.Order != "" && p.Order != query.OrderAsc && p.Order != query.OrderDesc {
		return p, fmt.Errorf("%w: order must be asc or desc", ErrBadRequest)
	}

	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("%w: page must be an integer", ErrBadRequest)
		}
		p.Page = n
	}

	if raw := v.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: page_size must be a positive integer", ErrBadRequest)
		}
		if n > h.maxPageSize {
			return p, fmt.Errorf("%w: page_size exceeds %d", ErrBadRequest, h.maxPageSize)
		}
		p.PageSize = n
	}
	return p, nil
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
