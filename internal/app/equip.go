package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/effects"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// EquipItem names one consumable to spend on a job. Category, when set,
// must match the program's.
type EquipItem struct {
	ItemID   string `json:"item_id"`
	Category string `json:"category,omitempty"`
}

// SeedPrograms upserts the consumable catalog.
func (c *Coordinator) SeedPrograms(ctx context.Context, programs []model.Program) error {
	for _, p := range programs {
		if p.ID == "" || len(p.Effects) == 0 {
			return fmt.Errorf("program %q needs an id and effects: %w", p.ID, model.ErrValidation)
		}
	}
	return c.store.Atomic(ctx, func(tx repository.Tx) error {
		for _, p := range programs {
			if err := tx.PutProgram(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Programs lists the consumable catalog.
func (c *Coordinator) Programs(ctx context.Context) ([]model.Program, error) {
	var out []model.Program
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListPrograms(ctx)
		return err
	})
	return out, err
}

// GrantInventory adds quantity units of itemID to requesterID and returns
// the new total.
func (c *Coordinator) GrantInventory(ctx context.Context, requesterID, itemID string, quantity int) (int, error) {
	if requesterID == "" {
		return 0, ErrMissingRequester
	}
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	var total int
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetProgram(ctx, itemID); err != nil {
			return err
		}
		var err error
		total, err = tx.AdjustInventory(ctx, requesterID, itemID, quantity)
		return err
	})
	return total, err
}

// Inventory returns how many units of itemID requesterID holds.
func (c *Coordinator) Inventory(ctx context.Context, requesterID, itemID string) (int, error) {
	var qty int
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		qty, err = tx.Quantity(ctx, requesterID, itemID)
		return err
	})
	return qty, err
}

// EquipPrograms spends one unit of every item on job and merges its effects
// into the requester's ledger. Either every item applies or none does.
func (c *Coordinator) EquipPrograms(ctx context.Context, jobID, requesterID string, items []EquipItem) ([]effects.Summary, error) {
	if requesterID == "" {
		return nil, ErrMissingRequester
	}
	if len(items) == 0 {
		return nil, ErrEmptyRequest
	}

	var summaries []effects.Summary
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		job, err := tx.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if err := effects.CheckOpen(job, requesterID); err != nil {
			return err
		}
		from := job.Status

		summaries = make([]effects.Summary, 0, len(items))
		for _, item := range items {
			program, err := tx.GetProgram(ctx, item.ItemID)
			if err != nil {
				return err
			}
			if item.Category != "" && !strings.EqualFold(item.Category, program.Category) {
				return fmt.Errorf("program %s is %q not %q: %w", program.ID, program.Category, item.Category, model.ErrCategoryMismatch)
			}
			if _, err := tx.AdjustInventory(ctx, requesterID, program.ID, -1); err != nil {
				return err
			}
			sum, err := effects.Merge(job, requesterID, program, c.src)
			if err != nil {
				return err
			}
			summaries = append(summaries, sum)
		}

		job.UpdatedAt = c.clock()
		return saveJob(ctx, tx, job, from)
	})
	if err != nil {
		metrics.RecordEquip(model.Kind(err))
		return nil, err
	}

	metrics.RecordEquip("ok")
	c.logger.Debug(ctx, "programs equipped", logger.JobID(jobID), logger.Requester(requesterID),
		logger.Int("items", len(items)))
	return summaries, nil
}
