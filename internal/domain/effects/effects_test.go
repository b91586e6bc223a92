package effects_test

import (
	"errors"
	"testing"

	"github.com/okian/mercwork/internal/domain/effects"
	"github.com/okian/mercwork/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type pickSource struct{ idx int }

func (p pickSource) Float64() float64 { return 0 }
func (p pickSource) IntN(n int) int   { return p.idx % n }

func newJob() *model.Job {
	return &model.Job{
		ID:     "job-1",
		Status: model.JobProposed,
		Difficulty: map[model.Skill]int{
			model.SkillCombat:  4,
			model.SkillHacking: 6,
			model.SkillStealth: 0,
		},
	}
}

func TestMerge_Stacking(t *testing.T) {
	Convey("Given a proposed job", t, func() {
		job := newJob()
		src := pickSource{}

		Convey("+2 and +3 on the same named skill stack to +5", func() {
			_, err := effects.Merge(job, "req", model.Program{ID: "a", Effects: []model.Effect{
				model.SkillBonus{Skill: model.SkillHacking, Amount: 2},
			}}, src)
			So(err, ShouldBeNil)
			_, err = effects.Merge(job, "req", model.Program{ID: "b", Effects: []model.Effect{
				model.SkillBonus{Skill: model.SkillHacking, Amount: 3},
			}}, src)
			So(err, ShouldBeNil)
			So(job.Ledger("req").SkillBonuses[model.SkillHacking], ShouldEqual, 5)
		})

		Convey("An all bonus lands on every tested skill only", func() {
			sum, err := effects.Merge(job, "req", model.Program{ID: "a", Effects: []model.Effect{
				model.AllSkillsBonus{Amount: 1},
			}}, src)
			So(err, ShouldBeNil)
			l := job.Ledger("req")
			So(l.SkillBonuses[model.SkillCombat], ShouldEqual, 1)
			So(l.SkillBonuses[model.SkillHacking], ShouldEqual, 1)
			So(l.SkillBonuses[model.SkillStealth], ShouldEqual, 0)
			So(sum.Bonuses, ShouldHaveLength, 2)
		})

		Convey("Reductions add and the guaranteed flag sets", func() {
			prog := model.Program{ID: "a", Effects: []model.Effect{
				model.DifficultyReduction{Amount: 2}, model.GuaranteedSuccess{},
			}}
			_, _ = effects.Merge(job, "req", prog, src)
			_, _ = effects.Merge(job, "req", prog, src)
			So(job.Ledger("req").ReduceDifficulty, ShouldEqual, 4)
			So(job.Ledger("req").GuaranteedSuccess, ShouldBeTrue)
		})

		Convey("Ledgers are isolated per requester", func() {
			_, _ = effects.Merge(job, "alice", model.Program{ID: "a", Effects: []model.Effect{
				model.SkillBonus{Skill: model.SkillCombat, Amount: 2},
			}}, src)
			So(job.PeekLedger("bob").Bonus(model.SkillCombat), ShouldEqual, 0)
		})
	})
}

func TestMerge_Reveals(t *testing.T) {
	Convey("Given a program that reveals and declares a bonus", t, func() {
		job := newJob()
		prog := model.Program{ID: "scan", Effects: []model.Effect{
			model.SkillBonus{Skill: model.SkillCombat, Amount: 4},
			model.RevealOne{},
		}}

		Convey("No bonus entry changes", func() {
			job.Ledger("req").SkillBonuses[model.SkillCombat] = 1
			sum, err := effects.Merge(job, "req", prog, pickSource{idx: 1})
			So(err, ShouldBeNil)
			So(job.Ledger("req").SkillBonuses, ShouldResemble, map[model.Skill]int{model.SkillCombat: 1})
			So(sum.Revealed, ShouldResemble, []model.Skill{model.SkillHacking})
		})

		Convey("Reveal-one only picks hidden tested skills", func() {
			_, _ = effects.Merge(job, "req", prog, pickSource{idx: 0})
			_, _ = effects.Merge(job, "req", prog, pickSource{idx: 0})
			sum, _ := effects.Merge(job, "req", prog, pickSource{idx: 0})
			So(sum.Revealed, ShouldBeEmpty)
			So(job.RevealedFor("req").Sorted(), ShouldResemble, []model.Skill{model.SkillCombat, model.SkillHacking})
		})

		Convey("Reveal-all reveals every tested skill", func() {
			_, err := effects.Merge(job, "req", model.Program{ID: "x", Effects: []model.Effect{
				model.RevealAll{}, model.AllSkillsBonus{Amount: 2},
			}}, pickSource{})
			So(err, ShouldBeNil)
			So(job.RevealedFor("req"), ShouldHaveLength, 2)
			So(job.Ledger("req").SkillBonuses, ShouldBeEmpty)
		})

		Convey("Reductions and guarantees still land next to a reveal", func() {
			sum, err := effects.Merge(job, "req", model.Program{ID: "deep", Effects: []model.Effect{
				model.RevealOne{},
				model.DifficultyReduction{Amount: 2},
				model.GuaranteedSuccess{},
				model.SkillBonus{Skill: model.SkillHacking, Amount: 3},
			}}, pickSource{idx: 1})
			So(err, ShouldBeNil)
			So(sum.Revealed, ShouldResemble, []model.Skill{model.SkillHacking})
			So(sum.ReduceDifficulty, ShouldEqual, 2)
			So(sum.GuaranteedSuccess, ShouldBeTrue)
			So(sum.Bonuses, ShouldBeEmpty)
			ledger := job.Ledger("req")
			So(ledger.ReduceDifficulty, ShouldEqual, 2)
			So(ledger.GuaranteedSuccess, ShouldBeTrue)
			So(ledger.SkillBonuses, ShouldBeEmpty)
		})
	})
}

func TestCheckOpen(t *testing.T) {
	Convey("Given an owned job", t, func() {
		job := newJob()
		job.OwnerID = "alice"

		So(effects.CheckOpen(job, "alice"), ShouldBeNil)
		So(errors.Is(effects.CheckOpen(job, "bob"), model.ErrUnauthorized), ShouldBeTrue)

		job.Status = model.JobActive
		So(errors.Is(effects.CheckOpen(job, "alice"), model.ErrInvalidState), ShouldBeTrue)
	})

	Convey("Clear drops every ledger", t, func() {
		job := newJob()
		job.Ledger("a")
		job.Ledger("b")
		effects.Clear(job)
		So(job.Ledgers, ShouldBeEmpty)
	})
}
