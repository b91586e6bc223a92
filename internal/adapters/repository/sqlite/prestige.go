package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okian/mercwork/internal/domain/model"
)

func scanPrestige(sc scanner) (*model.PrestigeProfile, error) {
	var (
		p         model.PrestigeProfile
		updatedAt int64
	)
	if err := sc.Scan(&p.RequesterID, &p.Score, &p.JobsSucceeded, &p.JobsFailed, &p.CurrencyEarned, &updatedAt); err != nil {
		return nil, err
	}
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

// GetPrestige implements repository.PrestigeStore.
func (t *tx) GetPrestige(ctx context.Context, requesterID string) (*model.PrestigeProfile, error) {
	p, err := scanPrestige(t.tx.QueryRowContext(ctx, `SELECT requester_id, score, jobs_succeeded,
		jobs_failed, currency_earned, updated_at FROM prestige WHERE requester_id = ?`, requesterID))
	if errors.Is(err, sql.ErrNoRows) {
		return &model.PrestigeProfile{RequesterID: requesterID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prestige %s: %w", requesterID, err)
	}
	return p, nil
}

// PutPrestige implements repository.PrestigeStore.
func (t *tx) PutPrestige(ctx context.Context, p *model.PrestigeProfile) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO prestige
		(requester_id, score, jobs_succeeded, jobs_failed, currency_earned, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (requester_id) DO UPDATE SET
			score = excluded.score,
			jobs_succeeded = excluded.jobs_succeeded,
			jobs_failed = excluded.jobs_failed,
			currency_earned = excluded.currency_earned,
			updated_at = excluded.updated_at`,
		p.RequesterID, p.Score, p.JobsSucceeded, p.JobsFailed, p.CurrencyEarned, toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put prestige %s: %w", p.RequesterID, err)
	}
	return nil
}

// ListPrestige implements repository.PrestigeStore.
func (t *tx) ListPrestige(ctx context.Context) ([]model.PrestigeProfile, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT requester_id, score, jobs_succeeded,
		jobs_failed, currency_earned, updated_at FROM prestige`)
	if err != nil {
		return nil, fmt.Errorf("list prestige: %w", err)
	}
	defer rows.Close()

	var out []model.PrestigeProfile
	for rows.Next() {
		p, err := scanPrestige(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prestige: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
