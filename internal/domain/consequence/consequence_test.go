package consequence_test

import (
	"testing"
	"time"

	"github.com/okian/mercwork/internal/domain/consequence"
	"github.com/okian/mercwork/internal/domain/faction"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/narrative"
	. "github.com/smartystreets/goconvey/convey"
)

type tagAnalyzer struct{ sig narrative.Signals }

func (a tagAnalyzer) Analyze(string) narrative.Signals { return a.sig }

func newCalculator(opts ...consequence.Option) *consequence.Calculator {
	catalog, err := faction.NewCatalog(faction.Defaults())
	if err != nil {
		panic(err)
	}
	return consequence.New(catalog, opts...)
}

func TestMultiplier(t *testing.T) {
	Convey("Flags multiply independently", t, func() {
		So(consequence.Multiplier(true, narrative.Signals{}), ShouldEqual, 1.0)
		So(consequence.Multiplier(false, narrative.Signals{Stealthy: true}), ShouldEqual, 0.8)
		So(consequence.Multiplier(true, narrative.Signals{HighProfile: true, Stealthy: true}), ShouldAlmostEqual, 1.95, 1e-9)
	})
}

func TestCalculator_Success(t *testing.T) {
	Convey("Given a quiet success against a megacorp executive", t, func() {
		calc := newCalculator()
		profile := &model.PrestigeProfile{RequesterID: "req"}
		ledger := model.NewFactionLedger("req")
		now := time.Now()

		res := calc.Apply(consequence.Input{
			JobID:     "job-1",
			Success:   true,
			Base:      25,
			Narrative: "The crew quietly walked a Helix Dynamics executive out of the tower.",
			Currency:  500,
			At:        now,
		}, profile, ledger)

		Convey("Prestige rises by the rounded multiplied base", func() {
			So(res.PrestigeDelta, ShouldEqual, 49)
			So(profile.Score, ShouldEqual, 49)
			So(profile.JobsSucceeded, ShouldEqual, 1)
			So(profile.CurrencyEarned, ShouldEqual, 500)
		})

		Convey("The mentioned faction gains relation and high-profile heat", func() {
			So(res.FactionDeltas[0], ShouldResemble, model.FactionDelta{
				Faction: "helix", RelationDelta: 73, ThreatDelta: 1, RelationAfter: 73, ThreatAfter: 1,
			})
		})

		Convey("Its ally receives a damped share without threat", func() {
			So(res.FactionDeltas, ShouldHaveLength, 2)
			So(res.FactionDeltas[1].Faction, ShouldEqual, "med")
			So(res.FactionDeltas[1].RelationDelta, ShouldEqual, 36)
			So(res.FactionDeltas[1].ThreatDelta, ShouldEqual, 0)
			So(ledger.History, ShouldHaveLength, 2)
		})
	})
}

func TestCalculator_Failure(t *testing.T) {
	Convey("Given a loud public failure against a gang", t, func() {
		calc := newCalculator()
		profile := &model.PrestigeProfile{RequesterID: "req", Score: 30}
		ledger := model.NewFactionLedger("req")
		now := time.Now()
		in := consequence.Input{
			JobID:     "job-2",
			Success:   false,
			Base:      50,
			Narrative: "A firefight with the Rust Hounds broke out in front of a crowd.",
			At:        now,
		}

		res := calc.Apply(in, profile, ledger)

		Convey("Prestige is subtracted and floored at zero", func() {
			So(res.PrestigeDelta, ShouldEqual, -30)
			So(profile.Score, ShouldEqual, 0)
			So(profile.JobsFailed, ShouldEqual, 1)
		})

		Convey("Negative impact raises threat proportionally plus public heat", func() {
			hounds := res.FactionDeltas[0]
			So(hounds.Faction, ShouldEqual, "hounds")
			So(hounds.RelationDelta, ShouldEqual, -62)
			So(hounds.ThreatDelta, ShouldEqual, 3)
		})

		Convey("Recent hostility escalates a repeat failure", func() {
			again := calc.Apply(in, profile, ledger)
			So(again.FactionDeltas[0].ThreatDelta, ShouldEqual, 4)
			So(again.FactionDeltas[0].ThreatAfter, ShouldEqual, 7)
		})

		Convey("Threat never exceeds the cap", func() {
			for i := 0; i < 5; i++ {
				calc.Apply(in, profile, ledger)
			}
			So(ledger.Standing("hounds").Threat, ShouldEqual, model.MaxThreat)
		})
	})
}

func TestCalculator_Analyzer(t *testing.T) {
	Convey("A replacement analyzer drives the same math", t, func() {
		calc := newCalculator(consequence.WithAnalyzer(tagAnalyzer{sig: narrative.Signals{
			Factions: []string{"lotus", "unknown"},
		}}))
		profile := &model.PrestigeProfile{}
		ledger := model.NewFactionLedger("req")

		res := calc.Apply(consequence.Input{Success: true, Base: 10, At: time.Now()}, profile, ledger)
		So(res.FactionDeltas, ShouldHaveLength, 1)
		So(res.FactionDeltas[0].RelationDelta, ShouldEqual, 10)
		So(res.Multiplier, ShouldEqual, 1.0)
	})
}
