package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okian/mercwork/internal/domain/model"
)

// Quantity implements repository.InventoryStore.
func (t *tx) Quantity(ctx context.Context, requesterID, itemID string) (int, error) {
	var qty int
	err := t.tx.QueryRowContext(ctx,
		`SELECT quantity FROM inventory WHERE requester_id = ? AND item_id = ?`,
		requesterID, itemID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get inventory %s/%s: %w", requesterID, itemID, err)
	}
	return qty, nil
}

// AdjustInventory implements repository.InventoryStore.
func (t *tx) AdjustInventory(ctx context.Context, requesterID, itemID string, delta int) (int, error) {
	qty, err := t.Quantity(ctx, requesterID, itemID)
	if err != nil {
		return 0, err
	}
	next := qty + delta
	switch {
	case next < 0:
		return qty, fmt.Errorf("%s holds %d of %s: %w", requesterID, qty, itemID, model.ErrNotOwned)
	case next == 0:
		_, err = t.tx.ExecContext(ctx,
			`DELETE FROM inventory WHERE requester_id = ? AND item_id = ?`, requesterID, itemID)
	default:
		_, err = t.tx.ExecContext(ctx, `INSERT INTO inventory (requester_id, item_id, quantity)
			VALUES (?, ?, ?)
			ON CONFLICT (requester_id, item_id) DO UPDATE SET quantity = excluded.quantity`,
			requesterID, itemID, next)
	}
	if err != nil {
		return qty, fmt.Errorf("adjust inventory %s/%s: %w", requesterID, itemID, err)
	}
	return next, nil
}
