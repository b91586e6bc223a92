package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/mercwork/internal/config"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.LethalPolicy, convey.ShouldEqual, "none")
			convey.So(cfg.BurnRecoveryHours, convey.ShouldEqual, 72)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Catalog(t *testing.T) {
	convey.Convey("Given the default program list", t, func() {
		cfg := config.New()
		cfg.Programs = config.DefaultPrograms()

		convey.Convey("Then every entry decodes", func() {
			programs, err := cfg.Catalog()
			convey.So(err, convey.ShouldBeNil)
			convey.So(programs, convey.ShouldHaveLength, len(cfg.Programs))
			convey.So(programs[3].Effects[0], convey.ShouldResemble, model.AllSkillsBonus{Amount: 1})
		})
	})

	convey.Convey("Given a program with an unknown effect", t, func() {
		cfg := config.New()
		cfg.Programs = []config.ProgramConfig{{ID: "x", Effects: []model.EffectSpec{{Kind: "teleport"}}}}

		convey.Convey("Then validation fails", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given out-of-range settings", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"lethal policy", func(c *config.Config) { c.LethalPolicy = "sometimes" }},
			{"death chance", func(c *config.Config) { c.DeathChance = 1.5 }},
			{"queue size", func(c *config.Config) { c.QueueSize = 0 }},
			{"rate limit", func(c *config.Config) { c.RateLimitRPS = 0 }},
			{"db path", func(c *config.Config) { c.DBPath = "" }},
			{"duplicate programs", func(c *config.Config) {
				c.Programs = []config.ProgramConfig{
					{ID: "a", Effects: []model.EffectSpec{{Kind: model.KindRevealAll}}},
					{ID: "a", Effects: []model.EffectSpec{{Kind: model.KindRevealAll}}},
				}
			}},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
