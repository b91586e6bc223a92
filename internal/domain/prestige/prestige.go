// Package prestige derives base prestige values and applies signed deltas to
// a requester's profile.
package prestige

import (
	"math"

	"github.com/okian/mercwork/internal/domain/model"
)

// tier maps a total tested difficulty ceiling to a base prestige value.
type tier struct {
	maxDifficulty int
	value         int
}

var tiers = []tier{
	{maxDifficulty: 6, value: 10},
	{maxDifficulty: 12, value: 25},
	{maxDifficulty: 18, value: 50},
	{maxDifficulty: 24, value: 100},
}

const topTierValue = 200

// BaseFor returns the job's payout prestige when set, otherwise the tier
// value for its total tested difficulty.
func BaseFor(job *model.Job) int {
	if job.Payout.Prestige > 0 {
		return job.Payout.Prestige
	}
	return TierValue(job.TotalDifficulty())
}

// TierValue maps total tested difficulty onto the base prestige ladder.
func TierValue(totalDifficulty int) int {
	for _, t := range tiers {
		if totalDifficulty <= t.maxDifficulty {
			return t.value
		}
	}
	return topTierValue
}

// Delta returns round(base * multiplier), negated on failure.
func Delta(base int, multiplier float64, success bool) int {
	d := int(math.Round(float64(base) * multiplier))
	if !success {
		return -d
	}
	return d
}

// Apply records a resolved job on profile and returns the delta actually
// applied after flooring the score at zero.
func Apply(profile *model.PrestigeProfile, delta int, success bool, currency int64) int {
	applied := profile.ApplyDelta(delta)
	if success {
		profile.JobsSucceeded++
	} else {
		profile.JobsFailed++
	}
	if currency > 0 {
		profile.CurrencyEarned += currency
	}
	return applied
}
