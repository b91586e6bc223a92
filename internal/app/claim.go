package service

import (
	"context"
	"fmt"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/consequence"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/narrative"
	"github.com/okian/mercwork/internal/domain/prestige"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// ClaimResolution finalizes a job awaiting its claim: it obtains the
// narrative, applies prestige and faction consequences, credits the owner
// and resolves the job. A job already resolved by an earlier claim returns
// the stored report without applying anything again.
func (c *Coordinator) ClaimResolution(ctx context.Context, jobID, requesterID string) (*model.ClaimReport, error) {
	if requesterID == "" {
		return nil, ErrMissingRequester
	}

	// Claims of one job queue here, so only the first reaches the generator
	// and the rest replay its report.
	unlockJob := c.claims.Lock(jobID)
	defer unlockJob()

	job, err := c.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if report, done, err := claimed(job, requesterID); done || err != nil {
		if done {
			metrics.RecordClaim("replay")
		}
		return report, err
	}

	// The generator call happens outside every transaction and the
	// requester lock.
	genCtx, cancel := context.WithTimeout(ctx, c.narrativeTimeout)
	text, fallback := narrative.Obtain(genCtx, c.generator, narrativeRequest(job), c.logger)
	cancel()

	unlock := c.locks.Lock(requesterID)
	defer unlock()

	var (
		report *model.ClaimReport
		replay bool
		score  int
	)
	err = c.store.Atomic(ctx, func(tx repository.Tx) error {
		job, err := tx.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		var done bool
		if report, done, err = claimed(job, requesterID); done || err != nil {
			replay = done
			return err
		}

		now := c.clock()
		profile, err := tx.GetPrestige(ctx, requesterID)
		if err != nil {
			return err
		}
		ledger, err := tx.GetFactionLedger(ctx, requesterID, now.Add(-c.recentWindow))
		if err != nil {
			return err
		}
		loaded := len(ledger.History)

		success := job.Outcome == model.OutcomeSuccess
		var credit int64
		if job.Settlement != nil {
			credit = job.Settlement.OwnerTotal
		}
		res := c.calc.Apply(consequence.Input{
			JobID:     job.ID,
			Success:   success,
			Base:      prestige.BaseFor(job),
			Narrative: text,
			Currency:  credit,
			At:        now,
		}, profile, ledger)

		profile.UpdatedAt = now
		if err := tx.PutPrestige(ctx, profile); err != nil {
			return err
		}
		if err := tx.SaveFactionLedger(ctx, ledger, ledger.History[loaded:]); err != nil {
			return err
		}

		report = &model.ClaimReport{
			Outcome:           job.Outcome,
			PrestigeDelta:     res.PrestigeDelta,
			PrestigeScore:     profile.Score,
			Title:             profile.Title(),
			Multiplier:        res.Multiplier,
			FactionDeltas:     res.FactionDeltas,
			Narrative:         text,
			NarrativeFallback: fallback,
			ClaimedAt:         now,
		}
		if job.Settlement != nil {
			job.Settlement.Credited = true
		}
		job.Narrative = text
		job.Claim = report
		job.Status = model.JobResolvedFailure
		if success {
			job.Status = model.JobResolvedSuccess
		}
		job.UpdatedAt = now
		score = profile.Score
		return saveJob(ctx, tx, job, model.JobPendingReport)
	})
	if err != nil {
		metrics.RecordClaim(model.Kind(err))
		return nil, err
	}
	if replay {
		metrics.RecordClaim("replay")
		return report, nil
	}

	c.ranking.Set(ctx, requesterID, score)

	metrics.RecordClaim("ok")
	metrics.RecordPrestigeDelta(report.PrestigeDelta)
	for _, d := range report.FactionDeltas {
		metrics.RecordFactionDelta(d.Faction, d.RelationDelta)
	}
	if fallback {
		metrics.RecordNarrative("fallback")
	} else {
		metrics.RecordNarrative("generated")
	}
	to := model.JobResolvedFailure
	if report.Outcome == model.OutcomeSuccess {
		to = model.JobResolvedSuccess
	}
	metrics.RecordJobTransition(string(model.JobPendingReport), string(to))

	c.logger.Info(ctx, "job claimed", logger.JobID(jobID), logger.Requester(requesterID),
		logger.Int("prestige_delta", report.PrestigeDelta), logger.Int("factions", len(report.FactionDeltas)))
	return report, nil
}

// claimed checks whether job can be claimed by requesterID. done is true
// when an earlier claim already resolved it; report is then that claim.
func claimed(job *model.Job, requesterID string) (report *model.ClaimReport, done bool, err error) {
	if job.OwnerID != requesterID {
		return nil, false, fmt.Errorf("job %s: %w", job.ID, model.ErrNotJobOwner)
	}
	if job.Claim != nil && job.Status.Terminal() {
		return job.Claim, true, nil
	}
	if job.Status != model.JobPendingReport {
		return nil, false, fmt.Errorf("job %s is %s: %w", job.ID, job.Status, ErrNotPendingReport)
	}
	return nil, false, nil
}

func narrativeRequest(job *model.Job) narrative.Request {
	req := narrative.Request{
		JobID:   job.ID,
		Title:   job.Title,
		Summary: job.Summary,
		Outcome: job.Outcome,
	}
	if job.Settlement != nil {
		for _, r := range job.Settlement.Reports {
			req.Participants = append(req.Participants, r.Name)
		}
	}
	return req
}

func (c *Coordinator) loadJob(ctx context.Context, jobID string) (*model.Job, error) {
	var job *model.Job
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		job, err = tx.GetJob(ctx, jobID)
		return err
	})
	return job, err
}
