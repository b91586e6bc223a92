package reward_test

import (
	"testing"

	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/reward"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistribute(t *testing.T) {
	Convey("Given a 9000 payout across two successful skills", t, func() {
		split := reward.Distribute(9000, []reward.Candidate{
			{Skill: model.SkillCombat, ParticipantID: "a", Success: true, Commission: 25},
			{Skill: model.SkillHacking, ParticipantID: "b", Success: true, Commission: 50},
		})

		Convey("Shares, commissions and nets follow the split rule", func() {
			So(split.Share, ShouldEqual, 4500)
			So(split.Lines[0].Commission, ShouldEqual, 1125)
			So(split.Lines[1].Commission, ShouldEqual, 2250)
			So(split.Lines[0].Net, ShouldEqual, 3375)
			So(split.Lines[1].Net, ShouldEqual, 2250)
			So(split.OwnerTotal, ShouldEqual, 3375)
			So(split.Residual, ShouldEqual, 0)
		})
	})

	Convey("Given a failed skill and an uneven payout", t, func() {
		split := reward.Distribute(1000, []reward.Candidate{
			{Skill: model.SkillCombat, ParticipantID: "a", Success: true, Commission: 10},
			{Skill: model.SkillHacking, ParticipantID: "b", Success: false, Commission: 10},
			{Skill: model.SkillStealth, ParticipantID: "c", Success: true, Commission: 15},
		})

		Convey("The floor residual is reported and failures earn nothing", func() {
			So(split.Share, ShouldEqual, 333)
			So(split.Residual, ShouldEqual, 1)
			So(split.Lines[1].Share, ShouldEqual, 0)
			So(split.Lines[1].Net, ShouldEqual, 0)
		})

		Convey("Commission rounds half up", func() {
			// 333 * 0.10 = 33.3, 333 * 0.15 = 49.95
			So(split.Lines[0].Commission, ShouldEqual, 33)
			So(split.Lines[2].Commission, ShouldEqual, 50)
			So(split.OwnerTotal, ShouldEqual, 83)
		})
	})

	Convey("Exact halves round up", t, func() {
		So(reward.Commission(5, 50), ShouldEqual, 3)
		So(reward.Commission(3, 50), ShouldEqual, 2)
		So(reward.Commission(100, 150), ShouldEqual, 100)
	})

	Convey("No candidates keep the whole payout as residual", t, func() {
		split := reward.Distribute(700, nil)
		So(split.Residual, ShouldEqual, 700)
		So(split.Lines, ShouldBeEmpty)
	})
}
