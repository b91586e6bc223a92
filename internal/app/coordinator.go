// Package service wires the resolution engine together: the Coordinator
// drives jobs through their life-cycle and the Service adds the due-job
// sweep, its queue and the worker pool.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/domain/consequence"
	"github.com/okian/mercwork/internal/domain/faction"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/narrative"
	"github.com/okian/mercwork/internal/domain/skilltest"
	"github.com/okian/mercwork/pkg/logger"
)

// Default coordinator configuration.
const (
	DefaultBurnRecovery         = 72 * time.Hour
	DefaultDeathChance          = 0.25
	DefaultExperiencePerSuccess = 25
	DefaultNarrativeTimeout     = 5 * time.Second
)

// LethalPolicy decides when a failed skill test may kill the participant.
type LethalPolicy string

const (
	// LethalNone only ever burns failing participants.
	LethalNone LethalPolicy = "none"
	// LethalSolo lets a failure kill on single-skill jobs.
	LethalSolo LethalPolicy = "solo"
	// LethalAlways lets any failure kill.
	LethalAlways LethalPolicy = "always"
)

// ParseLethalPolicy parses a policy name. Empty means LethalNone.
func ParseLethalPolicy(s string) (LethalPolicy, error) {
	switch p := LethalPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LethalNone, nil
	case LethalNone, LethalSolo, LethalAlways:
		return p, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownLethalPolicy)
	}
}

// Coordinator owns every job transition and the ledger writes that follow
// from them.
type Coordinator struct {
	store     repository.Store
	ranking   repository.Ranking
	catalog   *faction.Catalog
	calc      *consequence.Calculator
	analyzer  narrative.Analyzer
	generator narrative.Generator
	src       skilltest.Source
	now       func() time.Time
	locks     *keyedMutex
	claims    *keyedMutex

	factions             []model.Faction
	burnRecovery         time.Duration
	lethal               LethalPolicy
	deathChance          float64
	experiencePerSuccess int
	recentWindow         time.Duration
	narrativeTimeout     time.Duration

	logger logger.Logger
}

// NewCoordinator builds a coordinator over store. The faction catalog
// defaults to faction.Defaults().
func NewCoordinator(store repository.Store, opts ...CoordinatorOption) (*Coordinator, error) {
	c := &Coordinator{
		store:                store,
		src:                  skilltest.DefaultSource(),
		now:                  time.Now,
		locks:                newKeyedMutex(),
		claims:               newKeyedMutex(),
		factions:             faction.Defaults(),
		burnRecovery:         DefaultBurnRecovery,
		lethal:               LethalNone,
		deathChance:          DefaultDeathChance,
		experiencePerSuccess: DefaultExperiencePerSuccess,
		recentWindow:         consequence.DefaultRecentWindow,
		narrativeTimeout:     DefaultNarrativeTimeout,
		logger:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	catalog, err := faction.NewCatalog(c.factions)
	if err != nil {
		return nil, fmt.Errorf("faction catalog: %w", err)
	}
	c.catalog = catalog

	calcOpts := []consequence.Option{consequence.WithRecentWindow(c.recentWindow)}
	if c.analyzer != nil {
		calcOpts = append(calcOpts, consequence.WithAnalyzer(c.analyzer))
	}
	c.calc = consequence.New(catalog, calcOpts...)

	if c.ranking == nil {
		c.ranking = repository.NewTreapRanking()
	}
	c.logger = c.logger.With(logger.Component("coordinator"))
	return c, nil
}

// Catalog returns the faction catalog in use.
func (c *Coordinator) Catalog() *faction.Catalog { return c.catalog }

// Ranking returns the prestige ranking index.
func (c *Coordinator) Ranking() repository.Ranking { return c.ranking }

// RebuildRanking loads every stored prestige profile into the ranking.
func (c *Coordinator) RebuildRanking(ctx context.Context) (int, error) {
	var profiles []model.PrestigeProfile
	err := c.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		profiles, err = tx.ListPrestige(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild ranking: %w", err)
	}
	for _, p := range profiles {
		c.ranking.Set(ctx, p.RequesterID, p.Score)
	}
	c.logger.Info(ctx, "prestige ranking rebuilt", logger.Int("profiles", len(profiles)))
	return len(profiles), nil
}

// clock returns the current time truncated to storage precision.
func (c *Coordinator) clock() time.Time {
	return c.now().UTC().Truncate(time.Millisecond)
}

// killed rolls the lethal policy for one failed participant on a job
// testing tested skills.
func (c *Coordinator) killed(tested int) bool {
	switch c.lethal {
	case LethalAlways:
	case LethalSolo:
		if tested != 1 {
			return false
		}
	default:
		return false
	}
	return c.src.Float64() < c.deathChance
}
