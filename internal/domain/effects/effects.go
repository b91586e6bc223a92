// Package effects merges consumable program effects into a job's per
// requester ledger.
package effects

import (
	"fmt"

	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/skilltest"
)

// Summary describes what one equip changed.
type Summary struct {
	ProgramID         string              `json:"program_id"`
	Bonuses           map[model.Skill]int `json:"bonuses,omitempty"`
	ReduceDifficulty  int                 `json:"reduce_difficulty,omitempty"`
	GuaranteedSuccess bool                `json:"guaranteed_success,omitempty"`
	Revealed          []model.Skill       `json:"revealed,omitempty"`
}

// CheckOpen verifies the job still accepts equips from requesterID. An
// unowned job accepts anyone.
func CheckOpen(job *model.Job, requesterID string) error {
	if !job.Status.OpenForPreparation() {
		return fmt.Errorf("job %s is %s: %w", job.ID, job.Status, model.ErrNotOpenForPreparation)
	}
	if job.OwnerID != "" && job.OwnerID != requesterID {
		return fmt.Errorf("job %s: %w", job.ID, model.ErrNotJobOwner)
	}
	return nil
}

// Merge applies program's effects to requesterID's ledger on job. A program
// carrying any reveal effect grants no skill bonuses; its reductions and
// guarantees still apply. Numeric effects stack additively.
func Merge(job *model.Job, requesterID string, program model.Program, src skilltest.Source) (Summary, error) {
	sum := Summary{ProgramID: program.ID, Bonuses: make(map[model.Skill]int)}

	reveals := false
	for _, e := range program.Effects {
		if model.IsReveal(e) {
			reveals = true
			break
		}
	}

	ledger := job.Ledger(requesterID)
	for _, e := range program.Effects {
		if reveals && isBonus(e) {
			continue
		}
		switch v := e.(type) {
		case model.SkillBonus:
			ledger.SkillBonuses[v.Skill] += v.Amount
			sum.Bonuses[v.Skill] += v.Amount
		case model.AllSkillsBonus:
			for _, sk := range job.TestedSkills() {
				ledger.SkillBonuses[sk] += v.Amount
				sum.Bonuses[sk] += v.Amount
			}
		case model.DifficultyReduction:
			ledger.ReduceDifficulty += v.Amount
			sum.ReduceDifficulty += v.Amount
		case model.GuaranteedSuccess:
			ledger.GuaranteedSuccess = true
			sum.GuaranteedSuccess = true
		case model.RevealOne:
			if sk, ok := revealOne(job, requesterID, src); ok {
				sum.Revealed = append(sum.Revealed, sk)
			}
		case model.RevealAll:
			set := job.RevealedFor(requesterID)
			for _, sk := range job.TestedSkills() {
				if set.Add(sk) {
					sum.Revealed = append(sum.Revealed, sk)
				}
			}
		default:
			return Summary{}, fmt.Errorf("program %s: %T: %w", program.ID, e, model.ErrUnknownEffect)
		}
	}
	if ledger.Tag == "" {
		ledger.Tag = program.Name
	}
	return sum, nil
}

func isBonus(e model.Effect) bool {
	switch e.(type) {
	case model.SkillBonus, model.AllSkillsBonus:
		return true
	}
	return false
}

// revealOne picks a hidden tested skill uniformly at random.
func revealOne(job *model.Job, requesterID string, src skilltest.Source) (model.Skill, bool) {
	set := job.RevealedFor(requesterID)
	hidden := make([]model.Skill, 0, len(job.Difficulty))
	for _, sk := range job.TestedSkills() {
		if !set.Has(sk) {
			hidden = append(hidden, sk)
		}
	}
	if len(hidden) == 0 {
		return "", false
	}
	sk := hidden[src.IntN(len(hidden))]
	set.Add(sk)
	return sk, true
}

// Clear wipes every ledger entry on job.
func Clear(job *model.Job) {
	job.ClearLedgers()
}
