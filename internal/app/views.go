package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/model"
)

// SkillView is one skill of a job as a requester may see it. Difficulty is
// nil while the skill is hidden from that requester.
type SkillView struct {
	Skill      model.Skill `json:"skill"`
	Difficulty *int        `json:"difficulty"`
	Revealed   bool        `json:"revealed"`
	AssignedTo string      `json:"assigned_to,omitempty"`
}

// JobView is a job masked for one requester.
type JobView struct {
	ID         string                            `json:"id"`
	OwnerID    string                            `json:"owner_id,omitempty"`
	Title      string                            `json:"title"`
	Summary    string                            `json:"summary"`
	Status     model.JobStatus                   `json:"status"`
	Skills     []SkillView                       `json:"skills"`
	Payout     model.Payout                      `json:"payout"`
	Ledger     *model.LedgerEntry                `json:"ledger,omitempty"`
	Outcome    model.Outcome                     `json:"outcome,omitempty"`
	Results    map[model.Skill]model.SkillResult `json:"results,omitempty"`
	Settlement *model.Settlement                 `json:"settlement,omitempty"`
	Narrative  string                            `json:"narrative,omitempty"`
	Claim      *model.ClaimReport                `json:"claim,omitempty"`
	AcceptBy   *time.Time                        `json:"accept_by,omitempty"`
	CompleteAt *time.Time                        `json:"complete_at,omitempty"`
}

// ProfileView is a prestige profile with its derived title and rank. Rank
// is zero for requesters that never resolved a job.
type ProfileView struct {
	model.PrestigeProfile
	Title string `json:"title"`
	Rank  int    `json:"rank"`
}

// Job returns jobID as requesterID sees it. Difficulties stay hidden until
// revealed to the requester or until the job has been evaluated.
func (c *Coordinator) Job(ctx context.Context, jobID, requesterID string) (JobView, error) {
	job, err := c.loadJob(ctx, jobID)
	if err != nil {
		return JobView{}, err
	}
	return viewJob(job, requesterID), nil
}

func viewJob(job *model.Job, requesterID string) JobView {
	v := JobView{
		ID:         job.ID,
		OwnerID:    job.OwnerID,
		Title:      job.Title,
		Summary:    job.Summary,
		Status:     job.Status,
		Payout:     job.Payout,
		Outcome:    job.Outcome,
		Results:    job.Results,
		Settlement: job.Settlement,
		Narrative:  job.Narrative,
		Claim:      job.Claim,
	}
	if !job.AcceptBy.IsZero() {
		t := job.AcceptBy
		v.AcceptBy = &t
	}
	if !job.CompleteAt.IsZero() {
		t := job.CompleteAt
		v.CompleteAt = &t
	}
	if entry, ok := job.Ledgers[requesterID]; ok {
		v.Ledger = entry
	}

	evaluated := job.Results != nil || job.Status.Terminal() || job.Status == model.JobPendingReport
	revealed := job.Revealed[requesterID]
	for _, sk := range job.TestedSkills() {
		sv := SkillView{Skill: sk, AssignedTo: job.Assignments[sk], Revealed: evaluated || revealed.Has(sk)}
		if sv.Revealed {
			d := job.Difficulty[sk]
			sv.Difficulty = &d
		}
		v.Skills = append(v.Skills, sv)
	}
	return v
}

// Leaderboard returns the top limit requesters by prestige.
func (c *Coordinator) Leaderboard(ctx context.Context, limit int) ([]repository.Entry, error) {
	return c.ranking.TopN(ctx, limit)
}

// Profile returns requesterID's prestige profile.
func (c *Coordinator) Profile(ctx context.Context, requesterID string) (ProfileView, error) {
	if requesterID == "" {
		return ProfileView{}, ErrMissingRequester
	}
	var profile *model.PrestigeProfile
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		profile, err = tx.GetPrestige(ctx, requesterID)
		return err
	})
	if err != nil {
		return ProfileView{}, err
	}

	view := ProfileView{PrestigeProfile: *profile, Title: profile.Title()}
	entry, err := c.ranking.Rank(ctx, requesterID)
	switch {
	case err == nil:
		view.Rank = entry.Rank
	case !errors.Is(err, repository.ErrNotFound):
		return ProfileView{}, err
	}
	return view, nil
}
