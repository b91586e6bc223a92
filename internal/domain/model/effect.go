package model

import (
	"fmt"
	"strings"
)

// Effect is the closed set of consumable program effects. The unexported
// marker keeps the set closed to this package.
type Effect interface {
	effect()
	Kind() EffectKind
}

// EffectKind names an Effect variant on the wire and in config.
type EffectKind string

const (
	KindSkillBonus          EffectKind = "skill_bonus"
	KindAllSkillsBonus      EffectKind = "all_skills_bonus"
	KindDifficultyReduction EffectKind = "difficulty_reduction"
	KindGuaranteedSuccess   EffectKind = "guaranteed_success"
	KindRevealOne           EffectKind = "reveal_one"
	KindRevealAll           EffectKind = "reveal_all"
)

// SkillBonus adds Amount to one named skill.
type SkillBonus struct {
	Skill  Skill
	Amount int
}

// AllSkillsBonus adds Amount to every tested skill of the job.
type AllSkillsBonus struct {
	Amount int
}

// DifficultyReduction lowers every tested skill's difficulty by Amount.
type DifficultyReduction struct {
	Amount int
}

// GuaranteedSuccess forces the hardest tested skill to pass.
type GuaranteedSuccess struct{}

// RevealOne reveals one random hidden tested skill.
type RevealOne struct{}

// RevealAll reveals every tested skill.
type RevealAll struct{}

func (SkillBonus) effect()          {}
func (AllSkillsBonus) effect()      {}
func (DifficultyReduction) effect() {}
func (GuaranteedSuccess) effect()   {}
func (RevealOne) effect()           {}
func (RevealAll) effect()           {}

func (SkillBonus) Kind() EffectKind          { return KindSkillBonus }
func (AllSkillsBonus) Kind() EffectKind      { return KindAllSkillsBonus }
func (DifficultyReduction) Kind() EffectKind { return KindDifficultyReduction }
func (GuaranteedSuccess) Kind() EffectKind   { return KindGuaranteedSuccess }
func (RevealOne) Kind() EffectKind           { return KindRevealOne }
func (RevealAll) Kind() EffectKind           { return KindRevealAll }

// IsReveal reports whether e is one of the reveal variants.
func IsReveal(e Effect) bool {
	switch e.(type) {
	case RevealOne, RevealAll:
		return true
	default:
		return false
	}
}

// EffectSpec is the flat encoding of an Effect used by storage and config.
type EffectSpec struct {
	Kind   EffectKind `json:"kind" koanf:"kind"`
	Skill  string     `json:"skill,omitempty" koanf:"skill"`
	Amount int        `json:"amount,omitempty" koanf:"amount"`
}

// Decode turns the spec into its Effect variant. A skill bonus targeting
// "all" decodes to AllSkillsBonus.
func (s EffectSpec) Decode() (Effect, error) {
	switch EffectKind(strings.ToLower(string(s.Kind))) {
	case KindSkillBonus:
		if s.Amount <= 0 {
			return nil, fmt.Errorf("skill bonus amount %d: %w", s.Amount, ErrValidation)
		}
		sk, err := ParseSkill(s.Skill)
		if err != nil {
			return nil, err
		}
		if sk == SkillAll {
			return AllSkillsBonus{Amount: s.Amount}, nil
		}
		return SkillBonus{Skill: sk, Amount: s.Amount}, nil
	case KindAllSkillsBonus:
		if s.Amount <= 0 {
			return nil, fmt.Errorf("all-skills bonus amount %d: %w", s.Amount, ErrValidation)
		}
		return AllSkillsBonus{Amount: s.Amount}, nil
	case KindDifficultyReduction:
		if s.Amount <= 0 {
			return nil, fmt.Errorf("difficulty reduction amount %d: %w", s.Amount, ErrValidation)
		}
		return DifficultyReduction{Amount: s.Amount}, nil
	case KindGuaranteedSuccess:
		return GuaranteedSuccess{}, nil
	case KindRevealOne:
		return RevealOne{}, nil
	case KindRevealAll:
		return RevealAll{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", s.Kind, ErrUnknownEffect)
	}
}

// EncodeEffect flattens e into a spec.
func EncodeEffect(e Effect) EffectSpec {
	switch v := e.(type) {
	case SkillBonus:
		return EffectSpec{Kind: KindSkillBonus, Skill: string(v.Skill), Amount: v.Amount}
	case AllSkillsBonus:
		return EffectSpec{Kind: KindAllSkillsBonus, Skill: string(SkillAll), Amount: v.Amount}
	case DifficultyReduction:
		return EffectSpec{Kind: KindDifficultyReduction, Amount: v.Amount}
	default:
		return EffectSpec{Kind: e.Kind()}
	}
}

// Program is a consumable item definition.
type Program struct {
	ID       string
	Name     string
	Category string
	Effects  []Effect
}

// DecodeEffects decodes a list of specs, failing on the first bad one.
func DecodeEffects(specs []EffectSpec) ([]Effect, error) {
	out := make([]Effect, 0, len(specs))
	for i, s := range specs {
		e, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// EncodeEffects flattens a list of effects.
func EncodeEffects(effects []Effect) []EffectSpec {
	out := make([]EffectSpec, 0, len(effects))
	for _, e := range effects {
		out = append(out, EncodeEffect(e))
	}
	return out
}

// LedgerEntry accumulates one requester's effects on one job. Values only
// grow until the job resolves.
type LedgerEntry struct {
	SkillBonuses      map[Skill]int `json:"skill_bonuses"`
	ReduceDifficulty  int           `json:"reduce_difficulty"`
	GuaranteedSuccess bool          `json:"guaranteed_success"`
	Tag               string        `json:"tag,omitempty"`
}

// NewLedgerEntry returns an empty ledger entry.
func NewLedgerEntry() *LedgerEntry {
	return &LedgerEntry{SkillBonuses: make(map[Skill]int)}
}

// Bonus returns the accumulated bonus for sk.
func (l *LedgerEntry) Bonus(sk Skill) int {
	if l == nil {
		return 0
	}
	return l.SkillBonuses[sk]
}
