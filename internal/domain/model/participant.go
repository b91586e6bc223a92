package model

import (
	"fmt"
	"time"
)

// ParticipantStatus is a participant's availability.
type ParticipantStatus string

const (
	ParticipantAvailable ParticipantStatus = "available"
	ParticipantOnJob     ParticipantStatus = "on_job"
	ParticipantBurned    ParticipantStatus = "burned"
	ParticipantDeceased  ParticipantStatus = "deceased"
)

// ExperiencePerLevel is how much experience one level costs.
const ExperiencePerLevel = 100

// Participant is a runner that can be bound to a tested skill.
type Participant struct {
	ID         string
	OwnerID    string
	Name       string
	Combat     int
	Hacking    int
	Stealth    int
	Status     ParticipantStatus
	Level      int
	Experience int
	// Commission is a percentage in [0,100].
	Commission    int
	RecoverAt     time.Time
	JobsCompleted int
	JobsFailed    int
	Earnings      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SkillValue returns the participant's score for sk, or 0 for non-skills.
func (p *Participant) SkillValue(sk Skill) int {
	switch sk {
	case SkillCombat:
		return p.Combat
	case SkillHacking:
		return p.Hacking
	case SkillStealth:
		return p.Stealth
	default:
		return 0
	}
}

// Validate checks the skill and commission ranges.
func (p *Participant) Validate() error {
	for _, sk := range Skills {
		if v := p.SkillValue(sk); v < MinSkillValue || v > MaxSkillValue {
			return fmt.Errorf("participant %s %s=%d: %w", p.ID, sk, v, ErrValidation)
		}
	}
	if p.Commission < 0 || p.Commission > 100 {
		return fmt.Errorf("participant %s commission=%d: %w", p.ID, p.Commission, ErrValidation)
	}
	return nil
}

// Recover restores a burned participant whose recovery window has passed.
// It reports whether the status changed.
func (p *Participant) Recover(now time.Time) bool {
	if p.Status != ParticipantBurned || p.RecoverAt.IsZero() || now.Before(p.RecoverAt) {
		return false
	}
	p.Status = ParticipantAvailable
	p.RecoverAt = time.Time{}
	return true
}

// GainExperience adds exp and recomputes the level.
func (p *Participant) GainExperience(exp int) {
	if exp <= 0 {
		return
	}
	p.Experience += exp
	p.Level = 1 + p.Experience/ExperiencePerLevel
}
