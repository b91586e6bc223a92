// Package reward splits a job payout between the commissioning party and
// the participants.
package reward

import "github.com/okian/mercwork/internal/domain/model"

// Candidate is one tested skill's line going into a split.
type Candidate struct {
	Skill         model.Skill
	ParticipantID string
	Success       bool
	// Commission is a percentage in [0,100].
	Commission int
}

// Line is one candidate's line coming out of a split.
type Line struct {
	Skill         model.Skill
	ParticipantID string
	Success       bool
	Share         int64
	Commission    int64
	Net           int64
}

// Split is the full distribution of a payout.
type Split struct {
	Share      int64
	Residual   int64
	OwnerTotal int64
	Lines      []Line
}

// Distribute splits payout evenly across candidates with a floored share.
// Successful lines pay the owner a half-up rounded commission and keep the
// rest. Failed lines get nothing. The flooring residual is reported, never
// redistributed.
func Distribute(payout int64, candidates []Candidate) Split {
	n := int64(len(candidates))
	if n == 0 || payout <= 0 {
		lines := make([]Line, 0, len(candidates))
		for _, c := range candidates {
			lines = append(lines, Line{Skill: c.Skill, ParticipantID: c.ParticipantID, Success: c.Success})
		}
		return Split{Residual: max(payout, 0), Lines: lines}
	}

	share := payout / n
	out := Split{Share: share, Residual: payout - share*n, Lines: make([]Line, 0, n)}
	for _, c := range candidates {
		line := Line{Skill: c.Skill, ParticipantID: c.ParticipantID, Success: c.Success}
		if c.Success {
			line.Share = share
			line.Commission = Commission(share, c.Commission)
			line.Net = share - line.Commission
			out.OwnerTotal += line.Commission
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}

// Commission returns round-half-up(share * pct / 100) with pct clamped to
// [0,100].
func Commission(share int64, pct int) int64 {
	pct = min(max(pct, 0), 100)
	return (share*int64(pct)*2 + 100) / 200
}
