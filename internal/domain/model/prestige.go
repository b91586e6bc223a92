package model

import "time"

// PrestigeTier is one step of the title ladder.
type PrestigeTier struct {
	MinScore int
	Title    string
}

// PrestigeTiers is ordered by ascending MinScore.
var PrestigeTiers = []PrestigeTier{
	{MinScore: 0, Title: "Street Rat"},
	{MinScore: 100, Title: "Runner"},
	{MinScore: 300, Title: "Operator"},
	{MinScore: 700, Title: "Fixer"},
	{MinScore: 1500, Title: "Power Broker"},
	{MinScore: 3000, Title: "Legend"},
}

// TitleFor maps a score onto the tier ladder.
func TitleFor(score int) string {
	title := PrestigeTiers[0].Title
	for _, t := range PrestigeTiers {
		if score < t.MinScore {
			break
		}
		title = t.Title
	}
	return title
}

// PrestigeProfile is a requester's cumulative reputation.
type PrestigeProfile struct {
	RequesterID    string    `json:"requester_id"`
	Score          int       `json:"score"`
	JobsSucceeded  int       `json:"jobs_succeeded"`
	JobsFailed     int       `json:"jobs_failed"`
	CurrencyEarned int64     `json:"currency_earned"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Title is derived from Score.
func (p *PrestigeProfile) Title() string { return TitleFor(p.Score) }

// ApplyDelta adds delta, floors the score at 0 and returns the applied change.
func (p *PrestigeProfile) ApplyDelta(delta int) int {
	before := p.Score
	p.Score += delta
	if p.Score < 0 {
		p.Score = 0
	}
	return p.Score - before
}
