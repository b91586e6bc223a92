package model

import (
	"sort"
	"time"
)

// JobStatus is a job life-cycle state.
type JobStatus string

const (
	JobProposed        JobStatus = "proposed"
	JobAssigned        JobStatus = "assigned"
	JobActive          JobStatus = "active"
	JobPendingReport   JobStatus = "pending_report"
	JobResolvedSuccess JobStatus = "resolved_success"
	JobResolvedFailure JobStatus = "resolved_failure"
	JobExpired         JobStatus = "expired"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobResolvedSuccess || s == JobResolvedFailure || s == JobExpired
}

// OpenForPreparation reports whether programs may still be equipped.
func (s JobStatus) OpenForPreparation() bool {
	return s == JobProposed || s == JobAssigned
}

// Outcome is the aggregate result of a job.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Payout is what a job pays on success.
type Payout struct {
	Currency int64 `json:"currency"`
	Prestige int   `json:"prestige"`
}

// SkillResult is the stored outcome of one skill test.
type SkillResult struct {
	Skill             Skill   `json:"skill"`
	ParticipantID     string  `json:"participant_id"`
	Required          int     `json:"required"`
	Actual            int     `json:"actual"`
	Success           bool    `json:"success"`
	Chance            float64 `json:"chance"`
	BonusApplied      int     `json:"bonus_applied"`
	DifficultyReduced int     `json:"difficulty_reduced"`
	Guaranteed        bool    `json:"guaranteed"`
}

// ParticipantReport is one participant's line in a settlement.
type ParticipantReport struct {
	ParticipantID    string            `json:"participant_id"`
	Name             string            `json:"name"`
	Skill            Skill             `json:"skill"`
	Success          bool              `json:"success"`
	Share            int64             `json:"share"`
	Commission       int64             `json:"commission"`
	Net              int64             `json:"net"`
	Status           ParticipantStatus `json:"status"`
	ExperienceGained int               `json:"experience_gained"`
}

// Settlement is produced when a job reaches PendingReport.
type Settlement struct {
	ID         string              `json:"id"`
	Share      int64               `json:"share"`
	Residual   int64               `json:"residual"`
	OwnerTotal int64               `json:"owner_total"`
	Reports    []ParticipantReport `json:"reports"`
	Credited   bool                `json:"credited"`
}

// FactionDelta is one faction consequence applied by a claim.
type FactionDelta struct {
	Faction       string `json:"faction"`
	RelationDelta int    `json:"relation_delta"`
	ThreatDelta   int    `json:"threat_delta"`
	RelationAfter int    `json:"relation_after"`
	ThreatAfter   int    `json:"threat_after"`
}

// ClaimReport records what a claim applied so replays return the same answer.
type ClaimReport struct {
	Outcome           Outcome        `json:"outcome"`
	PrestigeDelta     int            `json:"prestige_delta"`
	PrestigeScore     int            `json:"prestige_score"`
	Title             string         `json:"title"`
	Multiplier        float64        `json:"multiplier"`
	FactionDeltas     []FactionDelta `json:"faction_deltas"`
	Narrative         string         `json:"narrative"`
	NarrativeFallback bool           `json:"narrative_fallback"`
	ClaimedAt         time.Time      `json:"claimed_at"`
}

// Job is a contract with independently tested skills.
type Job struct {
	ID         string
	OwnerID    string
	Title      string
	Summary    string
	Status     JobStatus
	Difficulty map[Skill]int
	// Assignments binds at most one participant per tested skill.
	Assignments map[Skill]string
	Payout      Payout
	// Ledgers and Revealed are keyed by requester id.
	Ledgers    map[string]*LedgerEntry
	Revealed   map[string]SkillSet
	Outcome    Outcome
	Results    map[Skill]SkillResult
	Settlement *Settlement
	Narrative  string
	Claim      *ClaimReport
	AcceptBy   time.Time
	Duration   time.Duration
	CompleteAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TestedSkills returns the skills with difficulty > 0 in name order.
func (j *Job) TestedSkills() []Skill {
	out := make([]Skill, 0, len(j.Difficulty))
	for sk, d := range j.Difficulty {
		if d > 0 {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// IsTested reports whether sk has a positive difficulty.
func (j *Job) IsTested(sk Skill) bool {
	return j.Difficulty[sk] > 0
}

// TotalDifficulty sums the difficulty of every tested skill.
func (j *Job) TotalDifficulty() int {
	total := 0
	for _, d := range j.Difficulty {
		if d > 0 {
			total += d
		}
	}
	return total
}

// HardestSkill returns the tested skill with the highest difficulty; ties go
// to the lowest skill name. ok is false when nothing is tested.
func (j *Job) HardestSkill() (Skill, bool) {
	var (
		best  Skill
		top   int
		found bool
	)
	for _, sk := range j.TestedSkills() {
		if d := j.Difficulty[sk]; d > top {
			best, top, found = sk, d, true
		}
	}
	return best, found
}

// Ledger returns the requester's ledger entry, creating it on first use.
func (j *Job) Ledger(requesterID string) *LedgerEntry {
	if j.Ledgers == nil {
		j.Ledgers = make(map[string]*LedgerEntry)
	}
	entry, ok := j.Ledgers[requesterID]
	if !ok {
		entry = NewLedgerEntry()
		j.Ledgers[requesterID] = entry
	}
	return entry
}

// PeekLedger returns the requester's ledger without creating one.
func (j *Job) PeekLedger(requesterID string) *LedgerEntry {
	if entry, ok := j.Ledgers[requesterID]; ok {
		return entry
	}
	return NewLedgerEntry()
}

// RevealedFor returns the requester's revealed set, creating it on first use.
func (j *Job) RevealedFor(requesterID string) SkillSet {
	if j.Revealed == nil {
		j.Revealed = make(map[string]SkillSet)
	}
	set, ok := j.Revealed[requesterID]
	if !ok {
		set = make(SkillSet)
		j.Revealed[requesterID] = set
	}
	return set
}

// ClearLedgers drops every requester's effect ledger.
func (j *Job) ClearLedgers() {
	j.Ledgers = make(map[string]*LedgerEntry)
}

// Due reports whether the job's timer relevant to its state has elapsed.
func (j *Job) Due(now time.Time) bool {
	switch j.Status {
	case JobProposed:
		return !j.AcceptBy.IsZero() && !now.Before(j.AcceptBy)
	case JobAssigned, JobActive:
		return !j.CompleteAt.IsZero() && !now.Before(j.CompleteAt)
	default:
		return false
	}
}
