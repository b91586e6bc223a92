// Package skilltest turns a participant's skill, a target difficulty and the
// accumulated modifiers into a bounded-probability pass/fail.
package skilltest

import (
	"math/rand/v2"

	"github.com/okian/mercwork/internal/domain/model"
)

const (
	MinChance = 0.05
	MaxChance = 0.95
)

// Source supplies randomness to the evaluator and the reveal picker.
type Source interface {
	// Float64 returns a number in [0,1).
	Float64() float64
	// IntN returns a number in [0,n).
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }

// DefaultSource draws from math/rand/v2's global generator.
func DefaultSource() Source { return globalSource{} }

// Input is everything one skill test needs.
type Input struct {
	Skill      int
	Difficulty int
	Bonus      int
	Reduction  int
	Guaranteed bool
}

// Result is the outcome of one skill test.
type Result struct {
	Required          int
	Actual            int
	Success           bool
	Chance            float64
	BonusApplied      int
	DifficultyReduced int
	Guaranteed        bool
}

// Chance returns clamp(actual/max(1, difficulty-reduction), 0.05, 0.95).
func Chance(actual, difficulty, reduction int) float64 {
	required := difficulty - max(reduction, 0)
	if required < 1 {
		required = 1
	}
	c := float64(actual) / float64(required)
	switch {
	case c < MinChance:
		return MinChance
	case c > MaxChance:
		return MaxChance
	default:
		return c
	}
}

// Evaluate runs one skill test. Negative modifiers count as zero.
func Evaluate(in Input, src Source) Result {
	bonus := max(in.Bonus, 0)
	reduction := max(in.Reduction, 0)
	actual := in.Skill + bonus
	chance := Chance(actual, in.Difficulty, reduction)

	res := Result{
		Required:          in.Difficulty,
		Actual:            actual,
		Chance:            chance,
		BonusApplied:      bonus,
		DifficultyReduced: reduction,
		Guaranteed:        in.Guaranteed,
	}
	if in.Guaranteed {
		res.Success = true
		return res
	}
	res.Success = src.Float64() < chance
	return res
}

// Roster resolves the participant bound to a skill.
type Roster func(sk model.Skill) (*model.Participant, bool)

// EvaluateJob tests every tested skill of job with ledger's modifiers. The
// guaranteed-success token, when set, is consumed by the hardest skill only.
// Skills without a bound participant are reported as failures.
func EvaluateJob(job *model.Job, ledger *model.LedgerEntry, roster Roster, src Source) (map[model.Skill]model.SkillResult, bool) {
	hardest, _ := job.HardestSkill()
	results := make(map[model.Skill]model.SkillResult, len(job.Difficulty))
	overall := true

	for _, sk := range job.TestedSkills() {
		p, ok := roster(sk)
		if !ok {
			results[sk] = model.SkillResult{Skill: sk, Required: job.Difficulty[sk]}
			overall = false
			continue
		}
		r := Evaluate(Input{
			Skill:      p.SkillValue(sk),
			Difficulty: job.Difficulty[sk],
			Bonus:      ledger.Bonus(sk),
			Reduction:  ledgerReduction(ledger),
			Guaranteed: ledgerGuaranteed(ledger) && sk == hardest,
		}, src)
		results[sk] = model.SkillResult{
			Skill:             sk,
			ParticipantID:     p.ID,
			Required:          r.Required,
			Actual:            r.Actual,
			Success:           r.Success,
			Chance:            r.Chance,
			BonusApplied:      r.BonusApplied,
			DifficultyReduced: r.DifficultyReduced,
			Guaranteed:        r.Guaranteed,
		}
		overall = overall && r.Success
	}
	return results, overall
}

func ledgerReduction(l *model.LedgerEntry) int {
	if l == nil {
		return 0
	}
	return l.ReduceDifficulty
}

func ledgerGuaranteed(l *model.LedgerEntry) bool {
	return l != nil && l.GuaranteedSuccess
}
