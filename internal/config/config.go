// Package config defines the engine's configuration and how it is loaded.
//
// Conventions:
// - Every key is flat and snake_case so YAML keys and MERC_ env vars match.
// - List settings (programs, factions) come from the YAML file only.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/mercwork/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file, or ":memory:".
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the due-job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of workers advancing due jobs.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the in-flight job guard.
	DedupeSize int `koanf:"dedupe_size"`

	// SweepLimit caps how many due jobs one sweep picks up.
	SweepLimit int `koanf:"sweep_limit"`

	// BurnRecoveryHours is how long a burned participant sits out.
	BurnRecoveryHours int `koanf:"burn_recovery_hours"`

	// LethalPolicy is none, solo or always.
	LethalPolicy string `koanf:"lethal_policy"`

	// DeathChance is the probability in [0,1] that a lethal failure kills.
	DeathChance float64 `koanf:"death_chance"`

	// ExperiencePerSuccess is granted per passed skill test.
	ExperiencePerSuccess int `koanf:"experience_per_success"`

	// NarrativeURL points at the narrative generator. Empty always uses
	// the template.
	NarrativeURL string `koanf:"narrative_url"`

	// NarrativeTimeoutMS bounds one generator call.
	NarrativeTimeoutMS int `koanf:"narrative_timeout_ms"`

	// RecentActivityDays is the window in which a hostile delta escalates
	// threat.
	RecentActivityDays int `koanf:"recent_activity_days"`

	// RateLimitRPS and RateLimitBurst shape the per-requester limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// MaxLeaderboardLimit caps GET /prestige/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Programs is the consumable catalog seeded at start.
	Programs []ProgramConfig `koanf:"programs"`

	// Factions replaces the built-in faction catalog when set.
	Factions []model.Faction `koanf:"factions"`
}

// ProgramConfig is one catalog entry as written in YAML.
type ProgramConfig struct {
	ID       string             `koanf:"id"`
	Name     string             `koanf:"name"`
	Category string             `koanf:"category"`
	Effects  []model.EffectSpec `koanf:"effects"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DBPath:               "mercwork.db",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		SweepLimit:           500,
		BurnRecoveryHours:    72,
		LethalPolicy:         "none",
		DeathChance:          0.25,
		ExperiencePerSuccess: 25,
		NarrativeTimeoutMS:   5000,
		RecentActivityDays:   7,
		RateLimitRPS:         20,
		RateLimitBurst:       40,
		MaxLeaderboardLimit:  100,
	}
}

// DefaultPrograms is the catalog used when the file lists none.
func DefaultPrograms() []ProgramConfig {
	return []ProgramConfig{
		{ID: "icebreaker", Name: "Icebreaker", Category: "software", Effects: []model.EffectSpec{
			{Kind: model.KindSkillBonus, Skill: string(model.SkillHacking), Amount: 2},
		}},
		{ID: "reflex-boost", Name: "Reflex Boost", Category: "chem", Effects: []model.EffectSpec{
			{Kind: model.KindSkillBonus, Skill: string(model.SkillCombat), Amount: 2},
		}},
		{ID: "optic-camo", Name: "Optic Camo", Category: "hardware", Effects: []model.EffectSpec{
			{Kind: model.KindSkillBonus, Skill: string(model.SkillStealth), Amount: 2},
		}},
		{ID: "adrenal-surge", Name: "Adrenal Surge", Category: "chem", Effects: []model.EffectSpec{
			{Kind: model.KindSkillBonus, Skill: string(model.SkillAll), Amount: 1},
		}},
		{ID: "blueprints", Name: "Stolen Blueprints", Category: "intel", Effects: []model.EffectSpec{
			{Kind: model.KindDifficultyReduction, Amount: 2},
		}},
		{ID: "inside-man", Name: "Inside Man", Category: "intel", Effects: []model.EffectSpec{
			{Kind: model.KindGuaranteedSuccess},
		}},
		{ID: "recon-drone", Name: "Recon Drone", Category: "hardware", Effects: []model.EffectSpec{
			{Kind: model.KindRevealOne},
		}},
		{ID: "full-dossier", Name: "Full Dossier", Category: "intel", Effects: []model.EffectSpec{
			{Kind: model.KindRevealAll},
		}},
	}
}

// Catalog decodes Programs into model programs.
func (c *Config) Catalog() ([]model.Program, error) {
	out := make([]model.Program, 0, len(c.Programs))
	for _, pc := range c.Programs {
		effects, err := model.DecodeEffects(pc.Effects)
		if err != nil {
			return nil, fmt.Errorf("%w: program %q: %v", ErrInvalidConfig, pc.ID, err)
		}
		out = append(out, model.Program{ID: pc.ID, Name: pc.Name, Category: pc.Category, Effects: effects})
	}
	return out, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.DeathChance < 0 || c.DeathChance > 1:
		return fmt.Errorf("%w: death_chance must be within [0,1]", ErrInvalidConfig)
	case c.BurnRecoveryHours < 1:
		return fmt.Errorf("%w: burn_recovery_hours must be positive", ErrInvalidConfig)
	case c.RateLimitRPS <= 0 || c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	switch c.LethalPolicy {
	case "", "none", "solo", "always":
	default:
		return fmt.Errorf("%w: lethal_policy %q", ErrInvalidConfig, c.LethalPolicy)
	}
	seen := make(map[string]bool, len(c.Programs))
	for _, p := range c.Programs {
		if p.ID == "" || seen[p.ID] {
			return fmt.Errorf("%w: program id %q is empty or duplicated", ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = true
	}
	_, err := c.Catalog()
	return err
}
