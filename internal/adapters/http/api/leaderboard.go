package api

import (
	"net/http"
	"strconv"
	"time"
)

// PrestigeHandler serves prestige standings and faction ledgers.
type PrestigeHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewPrestigeHandler creates a new prestige handler.
func NewPrestigeHandler(deps Dependencies, maxLimit int) *PrestigeHandler {
	return &PrestigeHandler{deps: deps, maxLimit: maxLimit}
}

// HandleLeaderboard handles GET /prestige/leaderboard?limit=N requests.
func (h *PrestigeHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), n)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleProfile handles GET /prestige/{requester} requests.
func (h *PrestigeHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	profile, err := h.deps.Profile(r.Context(), r.PathValue("requester"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleFactions handles GET /factions/{requester}?since=RFC3339 requests.
// Without since the whole history is returned.
func (h *PrestigeHandler) HandleFactions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_factions"
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		since = t
	}
	ledger, err := h.deps.Factions(r.Context(), r.PathValue("requester"), since)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// HandleDecay handles POST /factions/decay requests.
func (h *PrestigeHandler) HandleDecay(w http.ResponseWriter, r *http.Request) {
	const op = "api.decay_threat"
	report, err := h.deps.DecayThreat(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
