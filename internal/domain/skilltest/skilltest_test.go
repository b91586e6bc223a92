package skilltest_test

import (
	"testing"

	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/skilltest"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedSource returns draw for every Float64 call.
type fixedSource struct{ draw float64 }

func (f fixedSource) Float64() float64 { return f.draw }
func (f fixedSource) IntN(int) int     { return 0 }

func TestChance_Bounds(t *testing.T) {
	Convey("Chance is always clamped into [0.05, 0.95]", t, func() {
		for s := 1; s <= 10; s++ {
			for d := 1; d <= 20; d++ {
				for b := 0; b <= 5; b++ {
					for r := 0; r <= 25; r += 5 {
						c := skilltest.Chance(s+b, d, r)
						So(c, ShouldBeBetweenOrEqual, skilltest.MinChance, skilltest.MaxChance)
					}
				}
			}
		}

		Convey("Skill 10 against difficulty 1 caps at 0.95", func() {
			So(skilltest.Chance(10, 1, 0), ShouldEqual, 0.95)
		})

		Convey("Skill 1 against difficulty 20 floors at 0.05", func() {
			So(skilltest.Chance(1, 20, 0), ShouldEqual, 0.05)
		})

		Convey("A reduction past the difficulty floors the requirement at 1", func() {
			So(skilltest.Chance(1, 20, 30), ShouldEqual, 0.95)
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a skill 4 runner against difficulty 8", t, func() {
		in := skilltest.Input{Skill: 4, Difficulty: 8}

		Convey("A draw below the chance passes", func() {
			res := skilltest.Evaluate(in, fixedSource{draw: 0.49})
			So(res.Success, ShouldBeTrue)
			So(res.Chance, ShouldEqual, 0.5)
			So(res.Actual, ShouldEqual, 4)
		})

		Convey("A draw at the chance fails", func() {
			res := skilltest.Evaluate(in, fixedSource{draw: 0.5})
			So(res.Success, ShouldBeFalse)
		})

		Convey("Bonus and reduction are reported", func() {
			in.Bonus, in.Reduction = 2, 3
			res := skilltest.Evaluate(in, fixedSource{draw: 0.99})
			So(res.Actual, ShouldEqual, 6)
			So(res.BonusApplied, ShouldEqual, 2)
			So(res.DifficultyReduced, ShouldEqual, 3)
			So(res.Chance, ShouldEqual, 0.95)
			So(res.Success, ShouldBeFalse)
		})

		Convey("The guaranteed token passes regardless of the draw", func() {
			in.Guaranteed = true
			res := skilltest.Evaluate(in, fixedSource{draw: 0.99})
			So(res.Success, ShouldBeTrue)
			So(res.Guaranteed, ShouldBeTrue)
			So(res.Chance, ShouldEqual, 0.5)
		})
	})
}

func TestEvaluateJob(t *testing.T) {
	Convey("Given a three skill job with a guaranteed-success ledger", t, func() {
		job := &model.Job{Difficulty: map[model.Skill]int{
			model.SkillCombat:  5,
			model.SkillHacking: 9,
			model.SkillStealth: 3,
		}}
		runner := &model.Participant{ID: "p", Combat: 1, Hacking: 1, Stealth: 1}
		roster := func(model.Skill) (*model.Participant, bool) { return runner, true }
		ledger := model.NewLedgerEntry()
		ledger.GuaranteedSuccess = true

		results, overall := skilltest.EvaluateJob(job, ledger, roster, fixedSource{draw: 0.99})

		Convey("Only the hardest skill is forced to pass", func() {
			So(results, ShouldHaveLength, 3)
			So(results[model.SkillHacking].Success, ShouldBeTrue)
			So(results[model.SkillHacking].Guaranteed, ShouldBeTrue)
			So(results[model.SkillCombat].Success, ShouldBeFalse)
			So(results[model.SkillStealth].Guaranteed, ShouldBeFalse)
			So(overall, ShouldBeFalse)
		})
	})

	Convey("Untested skills are excluded from the output", t, func() {
		job := &model.Job{Difficulty: map[model.Skill]int{model.SkillCombat: 2, model.SkillStealth: 0}}
		runner := &model.Participant{ID: "p", Combat: 9}
		results, overall := skilltest.EvaluateJob(job, nil, func(model.Skill) (*model.Participant, bool) {
			return runner, true
		}, fixedSource{draw: 0.1})
		So(results, ShouldHaveLength, 1)
		So(overall, ShouldBeTrue)
	})
}
