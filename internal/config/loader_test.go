package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/mercwork/internal/config"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "mercwork.db")
				convey.So(cfg.Programs, convey.ShouldResemble, config.DefaultPrograms())
				convey.So(cfg.Factions, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("MERC_ADDR", ":8080")
			t.Setenv("MERC_QUEUE_SIZE", "2000")
			t.Setenv("MERC_LETHAL_POLICY", "solo")
			t.Setenv("MERC_DEATH_CHANCE", "0.5")
			t.Setenv("MERC_RATE_LIMIT_RPS", "2.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2000)
				convey.So(cfg.LethalPolicy, convey.ShouldEqual, "solo")
				convey.So(cfg.DeathChance, convey.ShouldEqual, 0.5)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
db_path: ":memory:"
worker_count: 3
narrative_url: "http://narrator.local/generate"
programs:
  - id: deck
    name: Cyberdeck
    category: hardware
    effects:
      - kind: skill_bonus
        skill: hacking
        amount: 3
      - kind: difficulty_reduction
        amount: 1
factions:
  - id: zaibatsu
    name: Zaibatsu
    type: megacorp
    synonyms: [zai]
`)
			t.Setenv("MERC_CONFIG", path)
			t.Setenv("MERC_WORKER_COUNT", "7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 7)
				convey.So(cfg.NarrativeURL, convey.ShouldEqual, "http://narrator.local/generate")
			})

			convey.Convey("Then the file catalog replaces the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				programs, err := cfg.Catalog()
				convey.So(err, convey.ShouldBeNil)
				convey.So(programs, convey.ShouldHaveLength, 1)
				convey.So(programs[0].Effects, convey.ShouldResemble, []model.Effect{
					model.SkillBonus{Skill: model.SkillHacking, Amount: 3},
					model.DifficultyReduction{Amount: 1},
				})
				convey.So(cfg.Factions, convey.ShouldHaveLength, 1)
				convey.So(cfg.Factions[0].Type, convey.ShouldEqual, model.FactionMegacorp)
				convey.So(cfg.Factions[0].Synonyms, convey.ShouldResemble, []string{"zai"})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("MERC_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("MERC_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("MERC_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown lethal policy", func() {
			t.Setenv("MERC_LETHAL_POLICY", "sometimes")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mercwork.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if len(kv) > len(config.EnvPrefix) && kv[:len(config.EnvPrefix)] == config.EnvPrefix {
			for i := 0; i < len(kv); i++ {
				if kv[i] == '=' {
					_ = os.Unsetenv(kv[:i])
					break
				}
			}
		}
	}
}
