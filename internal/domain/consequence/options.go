package consequence

import (
	"time"

	"github.com/okian/mercwork/internal/domain/narrative"
)

// Option configures a Calculator.
type Option func(*Calculator)

// WithAnalyzer replaces the keyword analyzer.
func WithAnalyzer(a narrative.Analyzer) Option {
	return func(c *Calculator) {
		if a != nil {
			c.analyzer = a
		}
	}
}

// WithRecentWindow sets how far back a hostile delta counts as recent.
func WithRecentWindow(d time.Duration) Option {
	return func(c *Calculator) {
		if d > 0 {
			c.recentWindow = d
		}
	}
}
