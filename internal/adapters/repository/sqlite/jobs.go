package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/mercwork/internal/domain/model"
)

const jobColumns = `id, owner_id, title, summary, status, difficulty_json, assignments_json,
       payout_currency, payout_prestige, ledgers_json, revealed_json, outcome,
       results_json, settlement_json, narrative, claim_json, accept_by,
       duration_ms, complete_at, created_at, updated_at`

// jobRow is the column form of a job.
type jobRow struct {
	difficulty  string
	assignments string
	ledgers     string
	revealed    string
	results     string
	settlement  sql.NullString
	claim       sql.NullString
}

func encodeJob(job *model.Job) (jobRow, error) {
	var (
		row jobRow
		err error
	)
	if row.difficulty, err = encodeJSON(job.Difficulty); err != nil {
		return row, err
	}
	if row.assignments, err = encodeJSON(job.Assignments); err != nil {
		return row, err
	}
	if row.ledgers, err = encodeJSON(job.Ledgers); err != nil {
		return row, err
	}
	if row.revealed, err = encodeJSON(job.Revealed); err != nil {
		return row, err
	}
	if row.results, err = encodeJSON(job.Results); err != nil {
		return row, err
	}
	if job.Settlement != nil {
		s, err := encodeJSON(job.Settlement)
		if err != nil {
			return row, err
		}
		row.settlement = sql.NullString{String: s, Valid: true}
	}
	if job.Claim != nil {
		c, err := encodeJSON(job.Claim)
		if err != nil {
			return row, err
		}
		row.claim = sql.NullString{String: c, Valid: true}
	}
	return row, nil
}

func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode column: %w", err)
	}
	return string(raw), nil
}

func decodeJSON(raw string, v any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRow, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (*model.Job, error) {
	var (
		job        model.Job
		row        jobRow
		status     string
		outcome    string
		acceptBy   sql.NullInt64
		durationMs int64
		completeAt sql.NullInt64
		createdAt  int64
		updatedAt  int64
	)
	if err := sc.Scan(
		&job.ID, &job.OwnerID, &job.Title, &job.Summary, &status,
		&row.difficulty, &row.assignments,
		&job.Payout.Currency, &job.Payout.Prestige,
		&row.ledgers, &row.revealed, &outcome,
		&row.results, &row.settlement, &job.Narrative, &row.claim,
		&acceptBy, &durationMs, &completeAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = model.JobStatus(status)
	job.Outcome = model.Outcome(outcome)
	job.AcceptBy = fromNullMillis(acceptBy)
	job.Duration = time.Duration(durationMs) * time.Millisecond
	job.CompleteAt = fromNullMillis(completeAt)
	job.CreatedAt = fromMillis(createdAt)
	job.UpdatedAt = fromMillis(updatedAt)

	job.Difficulty = make(map[model.Skill]int)
	job.Assignments = make(map[model.Skill]string)
	job.Ledgers = make(map[string]*model.LedgerEntry)
	job.Revealed = make(map[string]model.SkillSet)
	job.Results = make(map[model.Skill]model.SkillResult)
	for _, c := range []struct {
		raw string
		v   any
	}{
		{row.difficulty, &job.Difficulty},
		{row.assignments, &job.Assignments},
		{row.ledgers, &job.Ledgers},
		{row.revealed, &job.Revealed},
		{row.results, &job.Results},
	} {
		if err := decodeJSON(c.raw, c.v); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.ID, err)
		}
	}
	if row.settlement.Valid {
		job.Settlement = &model.Settlement{}
		if err := decodeJSON(row.settlement.String, job.Settlement); err != nil {
			return nil, fmt.Errorf("job %s settlement: %w", job.ID, err)
		}
	}
	if row.claim.Valid {
		job.Claim = &model.ClaimReport{}
		if err := decodeJSON(row.claim.String, job.Claim); err != nil {
			return nil, fmt.Errorf("job %s claim: %w", job.ID, err)
		}
	}
	return &job, nil
}

// GetJob implements repository.JobStore.
func (t *tx) GetJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := scanJob(t.tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, model.ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// CreateJob implements repository.JobStore.
func (t *tx) CreateJob(ctx context.Context, job *model.Job) error {
	row, err := encodeJob(job)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.OwnerID, job.Title, job.Summary, string(job.Status),
		row.difficulty, row.assignments,
		job.Payout.Currency, job.Payout.Prestige,
		row.ledgers, row.revealed, string(job.Outcome),
		row.results, row.settlement, job.Narrative, row.claim,
		toNullMillis(job.AcceptBy), job.Duration.Milliseconds(), toNullMillis(job.CompleteAt),
		toMillis(job.CreatedAt), toMillis(job.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// SaveJob implements repository.JobStore.
func (t *tx) SaveJob(ctx context.Context, job *model.Job, expect model.JobStatus) (bool, error) {
	row, err := encodeJob(job)
	if err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE jobs SET
		owner_id = ?, title = ?, summary = ?, status = ?, difficulty_json = ?, assignments_json = ?,
		payout_currency = ?, payout_prestige = ?, ledgers_json = ?, revealed_json = ?, outcome = ?,
		results_json = ?, settlement_json = ?, narrative = ?, claim_json = ?, accept_by = ?,
		duration_ms = ?, complete_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		job.OwnerID, job.Title, job.Summary, string(job.Status), row.difficulty, row.assignments,
		job.Payout.Currency, job.Payout.Prestige, row.ledgers, row.revealed, string(job.Outcome),
		row.results, row.settlement, job.Narrative, row.claim, toNullMillis(job.AcceptBy),
		job.Duration.Milliseconds(), toNullMillis(job.CompleteAt), toMillis(job.UpdatedAt),
		job.ID, string(expect),
	)
	if err != nil {
		return false, fmt.Errorf("save job %s: %w", job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return n == 1, nil
}

// ListDueJobs implements repository.JobStore.
func (t *tx) ListDueJobs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ms := toMillis(now)
	rows, err := t.tx.QueryContext(ctx, `SELECT id FROM jobs
		WHERE (status = ? AND accept_by IS NOT NULL AND accept_by <= ?)
		   OR (status IN (?, ?) AND complete_at IS NOT NULL AND complete_at <= ?)
		ORDER BY id
		LIMIT ?`,
		string(model.JobProposed), ms,
		string(model.JobAssigned), string(model.JobActive), ms,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due jobs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan due job: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
