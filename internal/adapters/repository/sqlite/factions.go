package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/okian/mercwork/internal/domain/model"
)

// GetFactionLedger implements repository.FactionStore.
func (t *tx) GetFactionLedger(ctx context.Context, requesterID string, since time.Time) (*model.FactionLedger, error) {
	ledger := model.NewFactionLedger(requesterID)

	rows, err := t.tx.QueryContext(ctx, `SELECT faction_id, relation, threat, base_threat, last_activity
		FROM faction_relations WHERE requester_id = ?`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("get faction standings %s: %w", requesterID, err)
	}
	for rows.Next() {
		var (
			st   model.FactionStanding
			last sql.NullInt64
		)
		if err := rows.Scan(&st.Faction, &st.Relation, &st.Threat, &st.BaseThreat, &last); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan faction standing: %w", err)
		}
		st.LastActivity = fromNullMillis(last)
		ledger.Standings[st.Faction] = &st
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	hist, err := t.tx.QueryContext(ctx, `SELECT id, faction_id, relation_delta, threat_delta, reason, job_id, at
		FROM faction_history WHERE requester_id = ? AND at >= ? ORDER BY at, rowid`,
		requesterID, toMillis(since))
	if err != nil {
		return nil, fmt.Errorf("get faction history %s: %w", requesterID, err)
	}
	defer hist.Close()
	for hist.Next() {
		var (
			e  model.FactionHistoryEntry
			at int64
		)
		if err := hist.Scan(&e.ID, &e.Faction, &e.RelationDelta, &e.ThreatDelta, &e.Reason, &e.JobID, &at); err != nil {
			return nil, fmt.Errorf("scan faction history: %w", err)
		}
		e.At = fromMillis(at)
		ledger.History = append(ledger.History, e)
	}
	return ledger, hist.Err()
}

// SaveFactionLedger implements repository.FactionStore.
func (t *tx) SaveFactionLedger(ctx context.Context, ledger *model.FactionLedger, appended []model.FactionHistoryEntry) error {
	ids := make([]string, 0, len(ledger.Standings))
	for id := range ledger.Standings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		st := ledger.Standings[id]
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO faction_relations
			(requester_id, faction_id, relation, threat, base_threat, last_activity)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (requester_id, faction_id) DO UPDATE SET
				relation = excluded.relation,
				threat = excluded.threat,
				base_threat = excluded.base_threat,
				last_activity = excluded.last_activity`,
			ledger.RequesterID, id, st.Relation, st.Threat, st.BaseThreat, toNullMillis(st.LastActivity)); err != nil {
			return fmt.Errorf("save faction standing %s/%s: %w", ledger.RequesterID, id, err)
		}
	}
	for _, e := range appended {
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO faction_history
			(id, requester_id, faction_id, relation_delta, threat_delta, reason, job_id, at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, ledger.RequesterID, e.Faction, e.RelationDelta, e.ThreatDelta, e.Reason, e.JobID, toMillis(e.At)); err != nil {
			return fmt.Errorf("append faction history %s: %w", ledger.RequesterID, err)
		}
	}
	return nil
}

// ListFactionRequesters implements repository.FactionStore.
func (t *tx) ListFactionRequesters(ctx context.Context) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT DISTINCT requester_id FROM faction_relations WHERE threat > 0 ORDER BY requester_id`)
	if err != nil {
		return nil, fmt.Errorf("list faction requesters: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan faction requester: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
