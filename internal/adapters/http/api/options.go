package api

import "time"

type options struct {
	rps                 float64
	burst               int
	idleTTL             time.Duration
	maxLeaderboardLimit int
}

func defaultOptions() options {
	return options{
		rps:                 20,
		burst:               40,
		idleTTL:             10 * time.Minute,
		maxLeaderboardLimit: 100,
	}
}

// Option configures a Server.
type Option func(*options)

// WithRateLimit sets the per-requester token bucket. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

// WithLimiterIdleTTL sets how long an idle requester's bucket is kept.
func WithLimiterIdleTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleTTL = d
		}
	}
}

// WithMaxLeaderboardLimit caps the limit query of the leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLeaderboardLimit = n
		}
	}
}
