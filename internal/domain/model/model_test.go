package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/mercwork/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJob_SkillQueries(t *testing.T) {
	Convey("Given a job testing hacking and stealth", t, func() {
		job := &model.Job{Difficulty: map[model.Skill]int{
			model.SkillCombat:  0,
			model.SkillHacking: 7,
			model.SkillStealth: 7,
		}}

		Convey("Then only positive difficulties are tested", func() {
			So(job.TestedSkills(), ShouldResemble, []model.Skill{model.SkillHacking, model.SkillStealth})
			So(job.IsTested(model.SkillCombat), ShouldBeFalse)
			So(job.TotalDifficulty(), ShouldEqual, 14)
		})

		Convey("Then a tie on hardest skill goes to the lowest name", func() {
			sk, ok := job.HardestSkill()
			So(ok, ShouldBeTrue)
			So(sk, ShouldEqual, model.SkillHacking)
		})

		Convey("Then ledgers are created once per requester", func() {
			a := job.Ledger("req-1")
			a.SkillBonuses[model.SkillHacking] = 2
			So(job.Ledger("req-1").Bonus(model.SkillHacking), ShouldEqual, 2)
			So(job.PeekLedger("req-2").Bonus(model.SkillHacking), ShouldEqual, 0)
			So(job.Ledgers, ShouldHaveLength, 1)

			job.ClearLedgers()
			So(job.Ledgers, ShouldBeEmpty)
		})
	})

	Convey("Given a job with nothing tested", t, func() {
		job := &model.Job{Difficulty: map[model.Skill]int{}}
		_, ok := job.HardestSkill()
		So(ok, ShouldBeFalse)
	})
}

func TestJob_Due(t *testing.T) {
	Convey("Given timers on a job", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		job := &model.Job{Status: model.JobProposed, AcceptBy: now, CompleteAt: now.Add(time.Hour)}

		So(job.Due(now.Add(-time.Second)), ShouldBeFalse)
		So(job.Due(now), ShouldBeTrue)

		job.Status = model.JobActive
		So(job.Due(now), ShouldBeFalse)
		So(job.Due(now.Add(time.Hour)), ShouldBeTrue)

		job.Status = model.JobResolvedSuccess
		So(job.Due(now.Add(24*time.Hour)), ShouldBeFalse)
	})
}

func TestEffectSpec_Decode(t *testing.T) {
	Convey("Given flat effect specs", t, func() {
		Convey("A skill bonus on all becomes an all-skills bonus", func() {
			e, err := model.EffectSpec{Kind: model.KindSkillBonus, Skill: "ALL", Amount: 2}.Decode()
			So(err, ShouldBeNil)
			So(e, ShouldResemble, model.AllSkillsBonus{Amount: 2})
		})

		Convey("Unknown kinds are rejected", func() {
			_, err := model.EffectSpec{Kind: "teleport"}.Decode()
			So(errors.Is(err, model.ErrUnknownEffect), ShouldBeTrue)
			So(model.Kind(err), ShouldEqual, "validation_error")
		})

		Convey("Bonuses need a positive amount", func() {
			_, err := model.EffectSpec{Kind: model.KindSkillBonus, Skill: "combat"}.Decode()
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("Encoding round-trips every variant", func() {
			in := []model.Effect{
				model.SkillBonus{Skill: model.SkillStealth, Amount: 3},
				model.AllSkillsBonus{Amount: 1},
				model.DifficultyReduction{Amount: 2},
				model.GuaranteedSuccess{},
				model.RevealOne{},
				model.RevealAll{},
			}
			out, err := model.DecodeEffects(model.EncodeEffects(in))
			So(err, ShouldBeNil)
			So(out, ShouldResemble, in)
			So(model.IsReveal(model.RevealAll{}), ShouldBeTrue)
			So(model.IsReveal(model.GuaranteedSuccess{}), ShouldBeFalse)
		})
	})
}

func TestSkillSet_JSON(t *testing.T) {
	Convey("A skill set encodes as a sorted array", t, func() {
		set := model.SkillSet{}
		So(set.Add(model.SkillStealth), ShouldBeTrue)
		So(set.Add(model.SkillCombat), ShouldBeTrue)
		So(set.Add(model.SkillCombat), ShouldBeFalse)

		raw, err := json.Marshal(set)
		So(err, ShouldBeNil)
		So(string(raw), ShouldEqual, `["combat","stealth"]`)

		var back model.SkillSet
		So(json.Unmarshal(raw, &back), ShouldBeNil)
		So(back.Has(model.SkillStealth), ShouldBeTrue)
	})
}

func TestParticipant(t *testing.T) {
	Convey("Given a burned participant", t, func() {
		now := time.Now()
		p := &model.Participant{ID: "p1", Combat: 5, Hacking: 5, Stealth: 5, Commission: 20,
			Status: model.ParticipantBurned, RecoverAt: now.Add(time.Hour)}

		So(p.Validate(), ShouldBeNil)
		So(p.Recover(now), ShouldBeFalse)
		So(p.Recover(now.Add(time.Hour)), ShouldBeTrue)
		So(p.Status, ShouldEqual, model.ParticipantAvailable)

		p.GainExperience(250)
		So(p.Level, ShouldEqual, 3)

		p.Commission = 101
		So(errors.Is(p.Validate(), model.ErrValidation), ShouldBeTrue)
	})
}

func TestPrestigeProfile(t *testing.T) {
	Convey("Titles are a step function of score", t, func() {
		So(model.TitleFor(0), ShouldEqual, "Street Rat")
		So(model.TitleFor(99), ShouldEqual, "Street Rat")
		So(model.TitleFor(100), ShouldEqual, "Runner")
		So(model.TitleFor(5000), ShouldEqual, "Legend")
	})

	Convey("Score never drops below zero", t, func() {
		p := &model.PrestigeProfile{Score: 30}
		So(p.ApplyDelta(-50), ShouldEqual, -30)
		So(p.Score, ShouldEqual, 0)
	})
}

func TestFactionLedger_Clamping(t *testing.T) {
	Convey("Given a fresh faction ledger", t, func() {
		l := model.NewFactionLedger("req-1")
		at := time.Now()

		Convey("Relation and threat stay in range across any delta sequence", func() {
			deltas := []struct{ rel, threat int }{{-900, 4}, {-900, 9}, {2500, -30}, {-40, 3}, {3000, 20}}
			for _, d := range deltas {
				l.Apply("helix", d.rel, d.threat, "test", "", at)
				st := l.Standing("helix")
				So(st.Relation, ShouldBeBetweenOrEqual, model.MinRelation, model.MaxRelation)
				So(st.Threat, ShouldBeBetweenOrEqual, model.MinThreat, model.MaxThreat)
			}
			So(l.History, ShouldHaveLength, len(deltas))
		})

		Convey("History records the applied rather than requested delta", func() {
			l.Apply("helix", 990, 0, "seed", "", at)
			e := l.Apply("helix", 50, 0, "boost", "job-1", at)
			So(e.RelationDelta, ShouldEqual, 10)
			So(e.JobID, ShouldEqual, "job-1")
			So(e.ID, ShouldNotBeEmpty)
		})

		Convey("Recent hostility looks at negative deltas inside the window", func() {
			l.Apply("lotus", -30, 1, "raid", "", at.Add(-48*time.Hour))
			So(l.RecentlyHostile("lotus", at.Add(-72*time.Hour)), ShouldBeTrue)
			So(l.RecentlyHostile("lotus", at.Add(-24*time.Hour)), ShouldBeFalse)
		})
	})
}
