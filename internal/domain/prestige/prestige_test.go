package prestige_test

import (
	"testing"

	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/prestige"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBaseFor(t *testing.T) {
	Convey("Base prestige prefers the payout value", t, func() {
		job := &model.Job{
			Difficulty: map[model.Skill]int{model.SkillCombat: 9, model.SkillHacking: 8},
			Payout:     model.Payout{Prestige: 42},
		}
		So(prestige.BaseFor(job), ShouldEqual, 42)

		job.Payout.Prestige = 0
		So(prestige.BaseFor(job), ShouldEqual, 50)
	})

	Convey("The tier ladder is a step function of total difficulty", t, func() {
		So(prestige.TierValue(0), ShouldEqual, 10)
		So(prestige.TierValue(6), ShouldEqual, 10)
		So(prestige.TierValue(7), ShouldEqual, 25)
		So(prestige.TierValue(24), ShouldEqual, 100)
		So(prestige.TierValue(25), ShouldEqual, 200)
	})
}

func TestDeltaAndApply(t *testing.T) {
	Convey("Deltas are rounded and signed by outcome", t, func() {
		So(prestige.Delta(25, 1.5, true), ShouldEqual, 38)
		So(prestige.Delta(25, 1.5, false), ShouldEqual, -38)
	})

	Convey("Applying a failure floors the score at zero", t, func() {
		p := &model.PrestigeProfile{Score: 20}
		applied := prestige.Apply(p, -50, false, 0)
		So(applied, ShouldEqual, -20)
		So(p.Score, ShouldEqual, 0)
		So(p.JobsFailed, ShouldEqual, 1)

		prestige.Apply(p, 120, true, 900)
		So(p.Score, ShouldEqual, 120)
		So(p.Title(), ShouldEqual, "Runner")
		So(p.CurrencyEarned, ShouldEqual, 900)
	})
}
