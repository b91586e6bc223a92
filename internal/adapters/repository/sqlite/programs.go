package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okian/mercwork/internal/domain/model"
)

func scanProgram(sc scanner) (model.Program, error) {
	var (
		p       model.Program
		effects string
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Category, &effects); err != nil {
		return model.Program{}, err
	}
	var specs []model.EffectSpec
	if err := decodeJSON(effects, &specs); err != nil {
		return model.Program{}, fmt.Errorf("program %s: %w", p.ID, err)
	}
	decoded, err := model.DecodeEffects(specs)
	if err != nil {
		return model.Program{}, fmt.Errorf("program %s: %w", p.ID, err)
	}
	p.Effects = decoded
	return p, nil
}

// GetProgram implements repository.ProgramStore.
func (t *tx) GetProgram(ctx context.Context, id string) (model.Program, error) {
	p, err := scanProgram(t.tx.QueryRowContext(ctx,
		`SELECT id, name, category, effects_json FROM programs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Program{}, fmt.Errorf("%s: %w", id, model.ErrProgramNotFound)
	}
	if err != nil {
		return model.Program{}, fmt.Errorf("get program %s: %w", id, err)
	}
	return p, nil
}

// PutProgram implements repository.ProgramStore.
func (t *tx) PutProgram(ctx context.Context, p model.Program) error {
	effects, err := encodeJSON(model.EncodeEffects(p.Effects))
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `INSERT INTO programs (id, name, category, effects_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			effects_json = excluded.effects_json`,
		p.ID, p.Name, p.Category, effects)
	if err != nil {
		return fmt.Errorf("put program %s: %w", p.ID, err)
	}
	return nil
}

// ListPrograms implements repository.ProgramStore.
func (t *tx) ListPrograms(ctx context.Context) ([]model.Program, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, name, category, effects_json FROM programs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var out []model.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
