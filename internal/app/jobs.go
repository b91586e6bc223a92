package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/effects"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/reward"
	"github.com/okian/mercwork/internal/domain/skilltest"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// NewJob describes a contract offered for assignment.
type NewJob struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Summary    string              `json:"summary"`
	Difficulty map[model.Skill]int `json:"difficulty"`
	Payout     model.Payout        `json:"payout"`
	// AcceptWindow is how long the job stays proposed. Zero never expires.
	AcceptWindow time.Duration `json:"accept_window"`
	// Duration runs from assignment to the completion timer.
	Duration time.Duration `json:"duration"`
}

// Assignment binds one participant to one tested skill.
type Assignment struct {
	Skill         model.Skill `json:"skill"`
	ParticipantID string      `json:"participant_id"`
}

// AdvanceResult is what AdvanceOnTimeout produced.
type AdvanceResult struct {
	JobID      string                            `json:"job_id"`
	Status     model.JobStatus                   `json:"status"`
	Outcome    model.Outcome                     `json:"outcome,omitempty"`
	Results    map[model.Skill]model.SkillResult `json:"results,omitempty"`
	Settlement *model.Settlement                 `json:"settlement,omitempty"`
}

// CreateJob validates spec and stores it as a proposed job.
func (c *Coordinator) CreateJob(ctx context.Context, spec NewJob) (*model.Job, error) {
	tested := 0
	for sk, d := range spec.Difficulty {
		if sk == model.SkillAll {
			return nil, fmt.Errorf("difficulty for %q: %w", sk, model.ErrUnknownSkill)
		}
		if _, err := model.ParseSkill(string(sk)); err != nil {
			return nil, err
		}
		if d < 0 {
			return nil, fmt.Errorf("difficulty %s=%d: %w", sk, d, model.ErrValidation)
		}
		if d > 0 {
			tested++
		}
	}
	if tested == 0 {
		return nil, ErrNoTestedSkills
	}
	if spec.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if spec.Payout.Currency < 0 || spec.Payout.Prestige < 0 {
		return nil, fmt.Errorf("negative payout: %w", model.ErrValidation)
	}

	now := c.clock()
	job := &model.Job{
		ID:          spec.ID,
		Title:       spec.Title,
		Summary:     spec.Summary,
		Status:      model.JobProposed,
		Difficulty:  spec.Difficulty,
		Assignments: make(map[model.Skill]string),
		Payout:      spec.Payout,
		Ledgers:     make(map[string]*model.LedgerEntry),
		Revealed:    make(map[string]model.SkillSet),
		Duration:    spec.Duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if spec.AcceptWindow > 0 {
		job.AcceptBy = now.Add(spec.AcceptWindow)
	}

	if err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		return tx.CreateJob(ctx, job)
	}); err != nil {
		return nil, err
	}
	c.logger.Info(ctx, "job proposed", logger.JobID(job.ID), logger.Int("tested", tested))
	return job, nil
}

// CreateParticipant validates p and adds it to its owner's roster as
// available.
func (c *Coordinator) CreateParticipant(ctx context.Context, p *model.Participant) (*model.Participant, error) {
	if p.OwnerID == "" {
		return nil, ErrMissingRequester
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := c.clock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Status = model.ParticipantAvailable
	p.Level = 1 + p.Experience/model.ExperiencePerLevel
	p.CreatedAt, p.UpdatedAt = now, now

	if err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		return tx.PutParticipant(ctx, p)
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Participants lists an owner's roster.
func (c *Coordinator) Participants(ctx context.Context, ownerID string) ([]*model.Participant, error) {
	if ownerID == "" {
		return nil, ErrMissingRequester
	}
	var out []*model.Participant
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListParticipants(ctx, ownerID)
		return err
	})
	return out, err
}

// AssignParticipants binds one participant per tested skill and moves the
// job to Assigned. The assigning requester becomes the job owner.
func (c *Coordinator) AssignParticipants(ctx context.Context, jobID, requesterID string, assignments []Assignment) (*model.Job, error) {
	if requesterID == "" {
		return nil, ErrMissingRequester
	}
	if len(assignments) == 0 {
		return nil, ErrEmptyRequest
	}

	var job *model.Job
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		job, err = tx.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Status != model.JobProposed {
			return fmt.Errorf("job %s is %s: %w", job.ID, job.Status, ErrNotProposed)
		}
		if job.OwnerID != "" && job.OwnerID != requesterID {
			return fmt.Errorf("job %s: %w", job.ID, model.ErrNotJobOwner)
		}

		now := c.clock()
		bound := make(map[model.Skill]string, len(assignments))
		used := make(map[string]bool, len(assignments))
		for sk, id := range job.Assignments {
			bound[sk] = id
			used[id] = true
		}
		for _, a := range assignments {
			if !job.IsTested(a.Skill) {
				return fmt.Errorf("job %s skill %q: %w", job.ID, a.Skill, model.ErrSkillNotRequired)
			}
			if _, ok := bound[a.Skill]; ok {
				return fmt.Errorf("job %s skill %s: %w", job.ID, a.Skill, model.ErrAlreadyAssigned)
			}
			if used[a.ParticipantID] {
				return fmt.Errorf("participant %s: %w", a.ParticipantID, model.ErrDuplicateParticipant)
			}

			p, err := tx.GetParticipant(ctx, a.ParticipantID)
			if err != nil {
				return err
			}
			if p.OwnerID != requesterID {
				return fmt.Errorf("participant %s: %w", p.ID, model.ErrNotParticipantOwner)
			}
			p.Recover(now)
			if p.Status != model.ParticipantAvailable {
				return fmt.Errorf("participant %s is %s: %w", p.ID, p.Status, model.ErrParticipantUnavailable)
			}
			p.Status = model.ParticipantOnJob
			p.UpdatedAt = now
			if err := tx.PutParticipant(ctx, p); err != nil {
				return err
			}
			bound[a.Skill] = p.ID
			used[p.ID] = true
		}
		for _, sk := range job.TestedSkills() {
			if _, ok := bound[sk]; !ok {
				return fmt.Errorf("job %s skill %s: %w", job.ID, sk, model.ErrIncompleteAssignment)
			}
		}

		job.Assignments = bound
		job.OwnerID = requesterID
		job.Status = model.JobAssigned
		job.CompleteAt = now.Add(job.Duration)
		job.UpdatedAt = now
		return saveJob(ctx, tx, job, model.JobProposed)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordJobTransition(string(model.JobProposed), string(model.JobAssigned))
	c.logger.Info(ctx, "job assigned", logger.JobID(job.ID), logger.Requester(requesterID),
		logger.Int("participants", len(job.Assignments)))
	return job, nil
}

// Dispatch closes preparation on an assigned job.
func (c *Coordinator) Dispatch(ctx context.Context, jobID, requesterID string) (*model.Job, error) {
	var job *model.Job
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		job, err = tx.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Status != model.JobAssigned {
			return fmt.Errorf("job %s is %s: %w", job.ID, job.Status, ErrNotAssigned)
		}
		if job.OwnerID != requesterID {
			return fmt.Errorf("job %s: %w", job.ID, model.ErrNotJobOwner)
		}
		job.Status = model.JobActive
		job.UpdatedAt = c.clock()
		return saveJob(ctx, tx, job, model.JobAssigned)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordJobTransition(string(model.JobAssigned), string(model.JobActive))
	return job, nil
}

// AdvanceOnTimeout fires the timer of a job. A proposed job past its
// acceptance deadline expires. An assigned or active job past completion
// runs every skill test, settles the roster and the payout split, clears
// the effect ledgers and waits for its claim.
func (c *Coordinator) AdvanceOnTimeout(ctx context.Context, jobID string) (*AdvanceResult, error) {
	var (
		res  *AdvanceResult
		from model.JobStatus
	)
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		job, err := tx.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		from = job.Status
		now := c.clock()

		switch job.Status {
		case model.JobProposed:
			if !job.Due(now) {
				return fmt.Errorf("job %s: %w", job.ID, model.ErrNotDue)
			}
			job.Status = model.JobExpired
			job.UpdatedAt = now
			if err := saveJob(ctx, tx, job, from); err != nil {
				return err
			}
			res = &AdvanceResult{JobID: job.ID, Status: job.Status}
			return nil
		case model.JobAssigned, model.JobActive:
			if !job.Due(now) {
				return fmt.Errorf("job %s: %w", job.ID, model.ErrNotDue)
			}
		default:
			return fmt.Errorf("job %s is %s: %w", job.ID, job.Status, model.ErrInvalidState)
		}

		res, err = c.resolve(ctx, tx, job, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordJobTransition(string(from), string(res.Status))
	if res.Settlement != nil {
		metrics.RecordPayout(res.Settlement.OwnerTotal, res.Settlement.Residual)
		for _, r := range res.Results {
			metrics.RecordSkillTest(string(r.Skill), r.Success, r.Chance)
		}
	}
	c.logger.Info(ctx, "job advanced", logger.JobID(jobID), logger.Status(string(res.Status)),
		logger.String("outcome", string(res.Outcome)))
	return res, nil
}

// resolve evaluates, settles and persists job. The job row is written last.
func (c *Coordinator) resolve(ctx context.Context, tx repository.Tx, job *model.Job, now time.Time) (*AdvanceResult, error) {
	from := job.Status
	tested := job.TestedSkills()

	roster := make(map[model.Skill]*model.Participant, len(tested))
	for _, sk := range tested {
		id, ok := job.Assignments[sk]
		if !ok {
			return nil, fmt.Errorf("job %s skill %s: %w", job.ID, sk, model.ErrIncompleteAssignment)
		}
		p, err := tx.GetParticipant(ctx, id)
		if err != nil {
			return nil, err
		}
		roster[sk] = p
	}

	results, success := skilltest.EvaluateJob(job, job.PeekLedger(job.OwnerID), func(sk model.Skill) (*model.Participant, bool) {
		p, ok := roster[sk]
		return p, ok
	}, c.src)

	candidates := make([]reward.Candidate, 0, len(tested))
	for _, sk := range tested {
		p := roster[sk]
		candidates = append(candidates, reward.Candidate{
			Skill:         sk,
			ParticipantID: p.ID,
			Success:       results[sk].Success,
			Commission:    p.Commission,
		})
	}
	split := reward.Distribute(job.Payout.Currency, candidates)

	settlement := &model.Settlement{
		ID:         uuid.NewString(),
		Share:      split.Share,
		Residual:   split.Residual,
		OwnerTotal: split.OwnerTotal,
		Reports:    make([]model.ParticipantReport, 0, len(split.Lines)),
	}
	for _, line := range split.Lines {
		p := roster[line.Skill]
		report := model.ParticipantReport{
			ParticipantID: p.ID,
			Name:          p.Name,
			Skill:         line.Skill,
			Success:       line.Success,
			Share:         line.Share,
			Commission:    line.Commission,
			Net:           line.Net,
		}
		if line.Success {
			p.Status = model.ParticipantAvailable
			p.JobsCompleted++
			p.GainExperience(c.experiencePerSuccess)
			report.ExperienceGained = c.experiencePerSuccess
		} else {
			p.JobsFailed++
			if c.killed(len(tested)) {
				p.Status = model.ParticipantDeceased
			} else {
				p.Status = model.ParticipantBurned
				p.RecoverAt = now.Add(c.burnRecovery)
			}
		}
		p.Earnings += line.Net
		p.UpdatedAt = now
		report.Status = p.Status

		if p.Status == model.ParticipantDeceased {
			if err := tx.DeleteParticipant(ctx, p.ID); err != nil {
				return nil, err
			}
			c.logger.Warn(ctx, "participant killed", logger.JobID(job.ID), logger.String("participant_id", p.ID))
		} else if err := tx.PutParticipant(ctx, p); err != nil {
			return nil, err
		}
		settlement.Reports = append(settlement.Reports, report)
	}

	job.Results = results
	job.Outcome = model.OutcomeFailure
	if success {
		job.Outcome = model.OutcomeSuccess
	}
	job.Settlement = settlement
	effects.Clear(job)
	job.Status = model.JobPendingReport
	job.UpdatedAt = now
	if err := saveJob(ctx, tx, job, from); err != nil {
		return nil, err
	}

	return &AdvanceResult{
		JobID:      job.ID,
		Status:     job.Status,
		Outcome:    job.Outcome,
		Results:    results,
		Settlement: settlement,
	}, nil
}

// AdvanceDue is the worker entry point. A job that is no longer due or
// already moved on is not an error.
func (c *Coordinator) AdvanceDue(ctx context.Context, jobID string) error {
	_, err := c.AdvanceOnTimeout(ctx, jobID)
	if errors.Is(err, model.ErrInvalidState) {
		c.logger.Debug(ctx, "due job skipped", logger.JobID(jobID), logger.Error(err))
		return nil
	}
	return err
}

// saveJob writes job guarded by its expected stored status.
func saveJob(ctx context.Context, tx repository.Tx, job *model.Job, expect model.JobStatus) error {
	ok, err := tx.SaveJob(ctx, job, expect)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %s: %w", job.ID, ErrJobChanged)
	}
	return nil
}
