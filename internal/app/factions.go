package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/faction"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// decayParallelism bounds how many requesters decay at once.
const decayParallelism = 8

// DecayReport summarizes one DecayThreat run.
type DecayReport struct {
	Requesters int       `json:"requesters"`
	Standings  int       `json:"standings"`
	At         time.Time `json:"at"`
}

// DecayThreat applies idle decay to every requester carrying threat. Each
// requester is decayed under its own lock in its own transaction.
func (c *Coordinator) DecayThreat(ctx context.Context) (DecayReport, error) {
	now := c.clock()

	var ids []string
	if err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		ids, err = tx.ListFactionRequesters(ctx)
		return err
	}); err != nil {
		return DecayReport{}, err
	}

	var changed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decayParallelism)
	for _, id := range ids {
		g.Go(func() error {
			n, err := c.decayRequester(gctx, id, now)
			if err != nil {
				return err
			}
			changed.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("coordinator", "decay")
		return DecayReport{}, err
	}

	report := DecayReport{Requesters: len(ids), Standings: int(changed.Load()), At: now}
	metrics.RecordThreatDecays(report.Standings)
	c.logger.Info(ctx, "threat decayed", logger.Int("requesters", report.Requesters),
		logger.Int("standings", report.Standings))
	return report, nil
}

func (c *Coordinator) decayRequester(ctx context.Context, requesterID string, now time.Time) (int, error) {
	unlock := c.locks.Lock(requesterID)
	defer unlock()

	var changed int
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		ledger, err := tx.GetFactionLedger(ctx, requesterID, now)
		if err != nil {
			return err
		}
		loaded := len(ledger.History)
		changed = faction.Decay(ledger, now)
		return tx.SaveFactionLedger(ctx, ledger, ledger.History[loaded:])
	})
	return changed, err
}

// Factions returns the requester's standings and history at or after since.
func (c *Coordinator) Factions(ctx context.Context, requesterID string, since time.Time) (*model.FactionLedger, error) {
	if requesterID == "" {
		return nil, ErrMissingRequester
	}
	var ledger *model.FactionLedger
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		ledger, err = tx.GetFactionLedger(ctx, requesterID, since)
		return err
	})
	return ledger, err
}
