package api

import (
	"net/http"
	"strings"
	"time"

	service "github.com/okian/mercwork/internal/app"
	"github.com/okian/mercwork/internal/domain/model"
)

// JobsHandler serves the job lifecycle.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

type createJobRequest struct {
	ID                  string              `json:"id"`
	Title               string              `json:"title"`
	Summary             string              `json:"summary"`
	Difficulty          map[model.Skill]int `json:"difficulty"`
	Payout              model.Payout        `json:"payout"`
	AcceptWindowMinutes int                 `json:"accept_window_minutes"`
	DurationMinutes     int                 `json:"duration_minutes"`
}

type requesterRequest struct {
	RequesterID string `json:"requester_id"`
}

type equipRequest struct {
	RequesterID string              `json:"requester_id"`
	Items       []service.EquipItem `json:"items"`
}

type assignRequest struct {
	RequesterID string               `json:"requester_id"`
	Assignments []service.Assignment `json:"assignments"`
}

// jobState is the reply to writes that move a job between states.
type jobState struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id,omitempty"`
	Status     model.JobStatus `json:"status"`
	AcceptBy   *time.Time      `json:"accept_by,omitempty"`
	CompleteAt *time.Time      `json:"complete_at,omitempty"`
}

func stateOf(job *model.Job) jobState {
	s := jobState{ID: job.ID, OwnerID: job.OwnerID, Status: job.Status}
	if !job.AcceptBy.IsZero() {
		t := job.AcceptBy
		s.AcceptBy = &t
	}
	if !job.CompleteAt.IsZero() {
		t := job.CompleteAt
		s.CompleteAt = &t
	}
	return s
}

// HandleCreate handles POST /jobs.
func (h *JobsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_job"
	var req createJobRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	job, err := h.deps.CreateJob(r.Context(), service.NewJob{
		ID:           strings.TrimSpace(req.ID),
		Title:        req.Title,
		Summary:      req.Summary,
		Difficulty:   req.Difficulty,
		Payout:       req.Payout,
		AcceptWindow: time.Duration(req.AcceptWindowMinutes) * time.Minute,
		Duration:     time.Duration(req.DurationMinutes) * time.Minute,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, stateOf(job))
}

// HandleGet handles GET /jobs/{id}?requester=R.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	view, err := h.deps.Job(r.Context(), r.PathValue("id"), r.URL.Query().Get("requester"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleEquip handles POST /jobs/{id}/equip.
func (h *JobsHandler) HandleEquip(w http.ResponseWriter, r *http.Request) {
	const op = "api.equip"
	var req equipRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sums, err := h.deps.EquipPrograms(r.Context(), r.PathValue("id"), req.RequesterID, req.Items)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sums)
}

// HandleAssign handles POST /jobs/{id}/assign.
func (h *JobsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.assign"
	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	job, err := h.deps.AssignParticipants(r.Context(), r.PathValue("id"), req.RequesterID, req.Assignments)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(job))
}

// HandleDispatch handles POST /jobs/{id}/dispatch.
func (h *JobsHandler) HandleDispatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.dispatch"
	var req requesterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	job, err := h.deps.Dispatch(r.Context(), r.PathValue("id"), req.RequesterID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(job))
}

// HandleAdvance handles POST /jobs/{id}/advance.
func (h *JobsHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	const op = "api.advance"
	res, err := h.deps.AdvanceOnTimeout(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleClaim handles POST /jobs/{id}/claim.
func (h *JobsHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	const op = "api.claim"
	var req requesterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.ClaimResolution(r.Context(), r.PathValue("id"), req.RequesterID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleSweep handles POST /jobs/sweep.
func (h *JobsHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	const op = "api.sweep"
	report, err := h.deps.SweepDue(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, report)
}
