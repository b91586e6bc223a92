package service

import (
	"time"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/narrative"
	"github.com/okian/mercwork/internal/domain/skilltest"
	"github.com/okian/mercwork/pkg/logger"
)

// CoordinatorOption applies a configuration option to the Coordinator.
type CoordinatorOption func(*Coordinator)

// WithSource sets the randomness used by skill tests, reveals and deaths.
func WithSource(src skilltest.Source) CoordinatorOption {
	return func(c *Coordinator) {
		if src != nil {
			c.src = src
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithGenerator sets the narrative generator. Without one every claim uses
// the template.
func WithGenerator(g narrative.Generator) CoordinatorOption {
	return func(c *Coordinator) {
		c.generator = g
	}
}

// WithAnalyzer replaces the keyword analyzer built from the faction catalog.
func WithAnalyzer(a narrative.Analyzer) CoordinatorOption {
	return func(c *Coordinator) {
		c.analyzer = a
	}
}

// WithFactions sets the faction catalog.
func WithFactions(factions []model.Faction) CoordinatorOption {
	return func(c *Coordinator) {
		if len(factions) > 0 {
			c.factions = factions
		}
	}
}

// WithRanking sets the prestige ranking index.
func WithRanking(r repository.Ranking) CoordinatorOption {
	return func(c *Coordinator) {
		if r != nil {
			c.ranking = r
		}
	}
}

// WithBurnRecovery sets how long a burned participant stays unavailable.
func WithBurnRecovery(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.burnRecovery = d
		}
	}
}

// WithLethalPolicy sets when failures may kill.
func WithLethalPolicy(p LethalPolicy) CoordinatorOption {
	return func(c *Coordinator) {
		if p != "" {
			c.lethal = p
		}
	}
}

// WithDeathChance sets the probability in [0,1] that a lethal failure kills.
func WithDeathChance(p float64) CoordinatorOption {
	return func(c *Coordinator) {
		if p >= 0 && p <= 1 {
			c.deathChance = p
		}
	}
}

// WithExperiencePerSuccess sets the experience granted per passed test.
func WithExperiencePerSuccess(exp int) CoordinatorOption {
	return func(c *Coordinator) {
		if exp >= 0 {
			c.experiencePerSuccess = exp
		}
	}
}

// WithRecentWindow sets how far back a hostile delta counts as recent.
func WithRecentWindow(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.recentWindow = d
		}
	}
}

// WithNarrativeTimeout bounds the generator call made by a claim.
func WithNarrativeTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.narrativeTimeout = d
		}
	}
}

// WithCoordinatorLogger sets the coordinator's logger.
func WithCoordinatorLogger(l logger.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the due-job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the in-flight job guard.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSweepLimit caps how many due jobs one sweep enqueues.
func WithSweepLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.sweepLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCoordinatorOptions forwards options to the embedded Coordinator.
func WithCoordinatorOptions(opts ...CoordinatorOption) Option {
	return func(s *Service) {
		s.coordinatorOpts = append(s.coordinatorOpts, opts...)
	}
}
