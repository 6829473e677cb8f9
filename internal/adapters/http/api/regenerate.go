// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/candidateboard/internal/app"
)

// RegenerateHandler replaces the candidate list with fresh synthetic data.
type RegenerateHandler struct {
	deps     RegenerateDependencies
	maxCount int
}

// NewRegenerateHandler creates a new regenerate handler.
func NewRegenerateHandler(deps RegenerateDependencies, maxCount int) *RegenerateHandler {
	return &RegenerateHandler{deps: deps, maxCount: maxCount}
}

// HandleRegenerate handles POST /regenerate?count=N requests. A storage
// failure still answers 200 with persisted=false, since the new list is
// being served regardless.
func (h *RegenerateHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: count must be a positive integer", ErrBadRequest))
			return
		}
		if n > h.maxCount {
			writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: count exceeds %d", ErrBadRequest, h.maxCount))
			return
		}
		count = n
	}

	gen, err := h.deps.Regenerate(r.Context(), count)
	if err != nil && !service.IsPersistError(err) {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, gen)
}
