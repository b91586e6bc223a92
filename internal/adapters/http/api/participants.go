package api

import (
	"net/http"
	"time"

	"github.com/okian/mercwork/internal/domain/model"
)

// ParticipantsHandler serves the roster, the program catalog and
// requester inventories.
type ParticipantsHandler struct {
	deps Dependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps Dependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

type participantRequest struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Name       string `json:"name"`
	Combat     int    `json:"combat"`
	Hacking    int    `json:"hacking"`
	Stealth    int    `json:"stealth"`
	Commission int    `json:"commission"`
}

type participantResponse struct {
	ID            string                  `json:"id"`
	OwnerID       string                  `json:"owner_id"`
	Name          string                  `json:"name"`
	Combat        int                     `json:"combat"`
	Hacking       int                     `json:"hacking"`
	Stealth       int                     `json:"stealth"`
	Status        model.ParticipantStatus `json:"status"`
	Level         int                     `json:"level"`
	Experience    int                     `json:"experience"`
	Commission    int                     `json:"commission"`
	RecoverAt     *time.Time              `json:"recover_at,omitempty"`
	JobsCompleted int                     `json:"jobs_completed"`
	JobsFailed    int                     `json:"jobs_failed"`
	Earnings      int64                   `json:"earnings"`
}

func participantOf(p *model.Participant) participantResponse {
	out := participantResponse{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Combat:        p.Combat,
		Hacking:       p.Hacking,
		Stealth:       p.Stealth,
		Status:        p.Status,
		Level:         p.Level,
		Experience:    p.Experience,
		Commission:    p.Commission,
		JobsCompleted: p.JobsCompleted,
		JobsFailed:    p.JobsFailed,
		Earnings:      p.Earnings,
	}
	if !p.RecoverAt.IsZero() {
		t := p.RecoverAt
		out.RecoverAt = &t
	}
	return out
}

type grantRequest struct {
	RequesterID string `json:"requester_id"`
	ItemID      string `json:"item_id"`
	Quantity    int    `json:"quantity"`
}

type grantResponse struct {
	RequesterID string `json:"requester_id"`
	ItemID      string `json:"item_id"`
	Quantity    int    `json:"quantity"`
}

type programResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Effects  []model.EffectSpec `json:"effects"`
}

// HandleCreate handles POST /participants.
func (h *ParticipantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_participant"
	var req participantRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.CreateParticipant(r.Context(), &model.Participant{
		ID:         req.ID,
		OwnerID:    req.OwnerID,
		Name:       req.Name,
		Combat:     req.Combat,
		Hacking:    req.Hacking,
		Stealth:    req.Stealth,
		Commission: req.Commission,
	})
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantOf(p))
}

// HandleList handles GET /participants?owner=R.
func (h *ParticipantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_participants"
	list, err := h.deps.Participants(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	out := make([]participantResponse, 0, len(list))
	for _, p := range list {
		out = append(out, participantOf(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGrant handles POST /inventory.
func (h *ParticipantsHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	const op = "api.grant_inventory"
	var req grantRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	qty, err := h.deps.GrantInventory(r.Context(), req.RequesterID, req.ItemID, req.Quantity)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, grantResponse{RequesterID: req.RequesterID, ItemID: req.ItemID, Quantity: qty})
}

// HandlePrograms handles GET /programs.
func (h *ParticipantsHandler) HandlePrograms(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_programs"
	programs, err := h.deps.Programs(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	out := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, programResponse{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Effects:  model.EncodeEffects(p.Effects),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
