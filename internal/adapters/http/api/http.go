// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	service "github.com/okian/mercwork/internal/app"
	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/effects"
	"github.com/okian/mercwork/internal/domain/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateJob(ctx context.Context, spec service.NewJob) (*model.Job, error)
	Job(ctx context.Context, jobID, requesterID string) (service.JobView, error)
	EquipPrograms(ctx context.Context, jobID, requesterID string, items []service.EquipItem) ([]effects.Summary, error)
	AssignParticipants(ctx context.Context, jobID, requesterID string, assignments []service.Assignment) (*model.Job, error)
	Dispatch(ctx context.Context, jobID, requesterID string) (*model.Job, error)
	AdvanceOnTimeout(ctx context.Context, jobID string) (*service.AdvanceResult, error)
	ClaimResolution(ctx context.Context, jobID, requesterID string) (*model.ClaimReport, error)
	SweepDue(ctx context.Context) (service.SweepReport, error)

	CreateParticipant(ctx context.Context, p *model.Participant) (*model.Participant, error)
	Participants(ctx context.Context, ownerID string) ([]*model.Participant, error)
	GrantInventory(ctx context.Context, requesterID, itemID string, quantity int) (int, error)
	Programs(ctx context.Context) ([]model.Program, error)

	Leaderboard(ctx context.Context, limit int) ([]repository.Entry, error)
	Profile(ctx context.Context, requesterID string) (service.ProfileView, error)
	Factions(ctx context.Context, requesterID string, since time.Time) (*model.FactionLedger, error)
	DecayThreat(ctx context.Context) (service.DecayReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	jobsHandler         *JobsHandler
	participantsHandler *ParticipantsHandler
	prestigeHandler     *PrestigeHandler
	limiter             *requesterLimiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		jobsHandler:         NewJobsHandler(deps),
		participantsHandler: NewParticipantsHandler(deps),
		prestigeHandler:     NewPrestigeHandler(deps, o.maxLeaderboardLimit),
		limiter:             newRequesterLimiter(o.rps, o.burst, o.idleTTL),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(RateLimitMiddleware(h, s.limiter, endpoint), endpoint))
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	route("POST /jobs", "jobs_create", s.jobsHandler.HandleCreate)
	route("POST /jobs/sweep", "jobs_sweep", s.jobsHandler.HandleSweep)
	route("GET /jobs/{id}", "jobs_get", s.jobsHandler.HandleGet)
	route("POST /jobs/{id}/equip", "jobs_equip", s.jobsHandler.HandleEquip)
	route("POST /jobs/{id}/assign", "jobs_assign", s.jobsHandler.HandleAssign)
	route("POST /jobs/{id}/dispatch", "jobs_dispatch", s.jobsHandler.HandleDispatch)
	route("POST /jobs/{id}/advance", "jobs_advance", s.jobsHandler.HandleAdvance)
	route("POST /jobs/{id}/claim", "jobs_claim", s.jobsHandler.HandleClaim)

	route("POST /participants", "participants_create", s.participantsHandler.HandleCreate)
	route("GET /participants", "participants_list", s.participantsHandler.HandleList)
	route("POST /inventory", "inventory_grant", s.participantsHandler.HandleGrant)
	route("GET /programs", "programs_list", s.participantsHandler.HandlePrograms)

	route("GET /prestige/leaderboard", "prestige_leaderboard", s.prestigeHandler.HandleLeaderboard)
	route("GET /prestige/{requester}", "prestige_profile", s.prestigeHandler.HandleProfile)
	route("GET /factions/{requester}", "factions_get", s.prestigeHandler.HandleFactions)
	route("POST /factions/decay", "factions_decay", s.prestigeHandler.HandleDecay)
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

// writeDomainError translates a service error into its HTTP status.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}

// decodeBody reads a single JSON document into v. An empty body is a bad
// request.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}
