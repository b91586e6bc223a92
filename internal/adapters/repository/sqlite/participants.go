package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okian/mercwork/internal/domain/model"
)

const participantColumns = `id, owner_id, name, combat, hacking, stealth, status, level, experience,
       commission, recover_at, jobs_completed, jobs_failed, earnings, created_at, updated_at`

func scanParticipant(sc scanner) (*model.Participant, error) {
	var (
		p         model.Participant
		status    string
		recoverAt sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	if err := sc.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Combat, &p.Hacking, &p.Stealth, &status,
		&p.Level, &p.Experience, &p.Commission, &recoverAt,
		&p.JobsCompleted, &p.JobsFailed, &p.Earnings, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = model.ParticipantStatus(status)
	p.RecoverAt = fromNullMillis(recoverAt)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

// GetParticipant implements repository.ParticipantStore.
func (t *tx) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	p, err := scanParticipant(t.tx.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, model.ErrParticipantNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get participant %s: %w", id, err)
	}
	return p, nil
}

// PutParticipant implements repository.ParticipantStore.
func (t *tx) PutParticipant(ctx context.Context, p *model.Participant) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO participants (`+participantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			combat = excluded.combat,
			hacking = excluded.hacking,
			stealth = excluded.stealth,
			status = excluded.status,
			level = excluded.level,
			experience = excluded.experience,
			commission = excluded.commission,
			recover_at = excluded.recover_at,
			jobs_completed = excluded.jobs_completed,
			jobs_failed = excluded.jobs_failed,
			earnings = excluded.earnings,
			updated_at = excluded.updated_at`,
		p.ID, p.OwnerID, p.Name, p.Combat, p.Hacking, p.Stealth, string(p.Status),
		p.Level, p.Experience, p.Commission, toNullMillis(p.RecoverAt),
		p.JobsCompleted, p.JobsFailed, p.Earnings, toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put participant %s: %w", p.ID, err)
	}
	return nil
}

// DeleteParticipant implements repository.ParticipantStore.
func (t *tx) DeleteParticipant(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete participant %s: %w", id, err)
	}
	return nil
}

// ListParticipants implements repository.ParticipantStore.
func (t *tx) ListParticipants(ctx context.Context, ownerID string) ([]*model.Participant, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE owner_id = ? ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
