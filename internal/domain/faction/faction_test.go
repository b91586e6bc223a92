package faction_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/mercwork/internal/domain/faction"
	"github.com/okian/mercwork/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecay(t *testing.T) {
	Convey("Given a faction at threat 8 idle for 10 days", t, func() {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		ledger := model.NewFactionLedger("req")
		st := ledger.Standing("helix")
		st.Threat, st.LastActivity = 8, start

		changed := faction.Decay(ledger, start.Add(10*24*time.Hour+3*time.Hour))

		Convey("Threat compounds down to 2", func() {
			So(changed, ShouldEqual, 1)
			So(st.Threat, ShouldEqual, 2)
		})

		Convey("Last activity stays at the last real activity", func() {
			So(st.LastActivity, ShouldEqual, start)
			So(st.BaseThreat, ShouldEqual, 8)
		})

		Convey("The decay is recorded", func() {
			So(ledger.History, ShouldHaveLength, 1)
			So(ledger.History[0].ThreatDelta, ShouldEqual, -6)
			So(ledger.History[0].Reason, ShouldEqual, faction.ReasonDecay)
		})
	})

	Convey("Given a faction at threat 8 decayed once per idle day", t, func() {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		ledger := model.NewFactionLedger("req")
		ledger.Apply("helix", -100, 8, "job failure", "job-1", start)
		st := ledger.Standing("helix")

		for d := 1; d <= 10; d++ {
			faction.Decay(ledger, start.Add(time.Duration(d)*24*time.Hour))
		}

		Convey("Threat matches a single run over the same ten days", func() {
			So(st.Threat, ShouldEqual, 2)
			So(st.BaseThreat, ShouldEqual, 8)
			So(st.LastActivity, ShouldEqual, start)
		})

		Convey("History deltas sum to the total decay", func() {
			sum := 0
			for _, h := range ledger.History[1:] {
				So(h.Reason, ShouldEqual, faction.ReasonDecay)
				sum += h.ThreatDelta
			}
			So(sum, ShouldEqual, -6)
		})

		Convey("Fresh activity resets the base", func() {
			ledger.Apply("helix", -10, 1, "job failure", "job-2", start.Add(11*24*time.Hour))
			So(st.Threat, ShouldEqual, 3)
			So(st.BaseThreat, ShouldEqual, 3)
			faction.Decay(ledger, start.Add(12*24*time.Hour))
			So(st.Threat, ShouldEqual, 2)
		})
	})

	Convey("Less than a day of idleness changes nothing", t, func() {
		now := time.Now()
		ledger := model.NewFactionLedger("req")
		st := ledger.Standing("lotus")
		st.Threat, st.LastActivity = 5, now.Add(-23*time.Hour)
		So(faction.Decay(ledger, now), ShouldEqual, 0)
		So(st.Threat, ShouldEqual, 5)
	})

	Convey("Decayed threat never goes negative", t, func() {
		So(faction.DecayedThreat(1, 1), ShouldEqual, 0)
		So(faction.DecayedThreat(10, 0), ShouldEqual, 10)
		So(faction.DecayedThreat(0, 5), ShouldEqual, 0)
	})
}

func TestCatalog(t *testing.T) {
	Convey("The default catalog indexes cleanly", t, func() {
		c, err := faction.NewCatalog(faction.Defaults())
		So(err, ShouldBeNil)
		f, ok := c.Get("med")
		So(ok, ShouldBeTrue)
		So(f.Type, ShouldEqual, model.FactionAuthority)
		So(c.All(), ShouldHaveLength, 5)
	})

	Convey("Duplicates and dangling allies are rejected", t, func() {
		_, err := faction.NewCatalog([]model.Faction{{ID: "a", Name: "A"}, {ID: "a", Name: "A"}})
		So(errors.Is(err, faction.ErrDuplicateFaction), ShouldBeTrue)

		_, err = faction.NewCatalog([]model.Faction{{ID: "a", Name: "A", Allies: []string{"zz"}}})
		So(errors.Is(err, faction.ErrInvalidFaction), ShouldBeTrue)
	})

	Convey("Type weights rank megacorp highest and gangs lowest", t, func() {
		So(faction.Weight(model.FactionMegacorp), ShouldBeGreaterThan, faction.Weight(model.FactionSyndicate))
		So(faction.Weight(model.FactionGang), ShouldEqual, 0.6)
		So(faction.Weight("unknown"), ShouldEqual, 1.0)
	})
}
