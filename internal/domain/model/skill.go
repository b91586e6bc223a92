// Package model contains the persisted records of the contract resolution
// engine and the small invariants that belong to them.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Skill names one of the three participant skills.
type Skill string

const (
	SkillCombat  Skill = "combat"
	SkillHacking Skill = "hacking"
	SkillStealth Skill = "stealth"

	// SkillAll is the effect-target sentinel for "every tested skill".
	SkillAll Skill = "all"
)

// Skills lists the concrete skills in canonical order.
var Skills = []Skill{SkillCombat, SkillHacking, SkillStealth}

const (
	MinSkillValue = 1
	MaxSkillValue = 10
)

// ParseSkill normalizes s into a concrete skill or SkillAll.
func ParseSkill(s string) (Skill, error) {
	switch sk := Skill(strings.ToLower(strings.TrimSpace(s))); sk {
	case SkillCombat, SkillHacking, SkillStealth, SkillAll:
		return sk, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownSkill)
	}
}

// SkillSet is an unordered set of skills.
type SkillSet map[Skill]struct{}

// Add inserts s and reports whether it was new.
func (s SkillSet) Add(sk Skill) bool {
	if _, ok := s[sk]; ok {
		return false
	}
	s[sk] = struct{}{}
	return true
}

// Has reports membership.
func (s SkillSet) Has(sk Skill) bool {
	_, ok := s[sk]
	return ok
}

// Sorted returns the members in name order.
func (s SkillSet) Sorted() []Skill {
	out := make([]Skill, 0, len(s))
	for sk := range s {
		out = append(out, sk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of skill names.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	var names []Skill
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(SkillSet, len(names))
	for _, n := range names {
		set.Add(n)
	}
	*s = set
	return nil
}
