// Package consequence turns a job outcome and its narrative into prestige and
// faction ledger changes.
package consequence

import (
	"math"
	"time"

	"github.com/okian/mercwork/internal/domain/faction"
	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/internal/domain/narrative"
	"github.com/okian/mercwork/internal/domain/prestige"
)

// Factors are the per-flag multipliers for one outcome.
type Factors struct {
	HighProfile float64
	Violent     float64
	Stealthy    float64
	Public      float64
}

var (
	SuccessFactors = Factors{HighProfile: 1.5, Violent: 1.2, Stealthy: 1.3, Public: 1.4}
	FailureFactors = Factors{HighProfile: 1.5, Violent: 1.3, Stealthy: 0.8, Public: 1.6}
)

const (
	// threatDivisor converts relation impact into threat.
	threatDivisor = 25
	// allyDamping divides impact propagated to allied factions.
	allyDamping = 2

	DefaultRecentWindow = 7 * 24 * time.Hour

	ReasonSuccess = "job success"
	ReasonFailure = "job failure"
	ReasonAlly    = "allied faction"
)

// Input is one resolved job as the calculator sees it.
type Input struct {
	JobID     string
	Success   bool
	Base      int
	Narrative string
	// Currency is credited to the requester's lifetime earnings.
	Currency int64
	At       time.Time
}

// Result summarizes what Apply changed.
type Result struct {
	Signals       narrative.Signals
	Multiplier    float64
	PrestigeDelta int
	FactionDeltas []model.FactionDelta
}

// Calculator applies consequences to a requester's ledgers. It holds no
// per-requester state; callers serialize Apply per requester.
type Calculator struct {
	analyzer     narrative.Analyzer
	catalog      *faction.Catalog
	recentWindow time.Duration
}

// New returns a calculator over catalog.
func New(catalog *faction.Catalog, opts ...Option) *Calculator {
	c := &Calculator{catalog: catalog, recentWindow: DefaultRecentWindow}
	for _, opt := range opts {
		opt(c)
	}
	if c.analyzer == nil {
		c.analyzer = narrative.NewKeywordAnalyzer(catalog.All())
	}
	return c
}

// Multiplier starts at 1 and multiplies in the outcome factor of every true
// flag.
func Multiplier(success bool, sig narrative.Signals) float64 {
	f := FailureFactors
	if success {
		f = SuccessFactors
	}
	m := 1.0
	if sig.HighProfile {
		m *= f.HighProfile
	}
	if sig.Violent {
		m *= f.Violent
	}
	if sig.Stealthy {
		m *= f.Stealthy
	}
	if sig.Public {
		m *= f.Public
	}
	return m
}

// Apply mutates profile and ledger for in and reports the applied deltas.
func (c *Calculator) Apply(in Input, profile *model.PrestigeProfile, ledger *model.FactionLedger) Result {
	sig := c.analyzer.Analyze(in.Narrative)
	mult := Multiplier(in.Success, sig)

	res := Result{Signals: sig, Multiplier: mult}
	res.PrestigeDelta = prestige.Apply(profile, prestige.Delta(in.Base, mult, in.Success), in.Success, in.Currency)

	reason := ReasonFailure
	if in.Success {
		reason = ReasonSuccess
	}
	mentioned := make(map[string]bool, len(sig.Factions))
	for _, id := range sig.Factions {
		mentioned[id] = true
	}

	deltas := newDeltaSet()
	for _, id := range sig.Factions {
		f, ok := c.catalog.Get(id)
		if !ok {
			continue
		}
		impact := int(math.Round(float64(in.Base) * mult * faction.Weight(f.Type)))
		signed := impact
		if !in.Success {
			signed = -impact
		}

		threat := 0
		if signed < 0 {
			threat += max(1, impact/threatDivisor)
			if ledger.RecentlyHostile(id, in.At.Add(-c.recentWindow)) {
				threat++
			}
		}
		if sig.HighProfile {
			if in.Success {
				threat++
			} else {
				threat += 2
			}
		}
		if sig.Public {
			threat++
		}
		deltas.add(ledger, ledger.Apply(id, signed, threat, reason, in.JobID, in.At))

		for _, ally := range f.Allies {
			if mentioned[ally] {
				continue
			}
			if spill := signed / allyDamping; spill != 0 {
				deltas.add(ledger, ledger.Apply(ally, spill, 0, ReasonAlly, in.JobID, in.At))
			}
		}
	}
	res.FactionDeltas = deltas.list()
	return res
}

// deltaSet folds history entries into one FactionDelta per faction, kept in
// first-touch order.
type deltaSet struct {
	order []string
	byID  map[string]*model.FactionDelta
}

func newDeltaSet() *deltaSet {
	return &deltaSet{byID: make(map[string]*model.FactionDelta)}
}

func (d *deltaSet) add(ledger *model.FactionLedger, e model.FactionHistoryEntry) {
	fd, ok := d.byID[e.Faction]
	if !ok {
		fd = &model.FactionDelta{Faction: e.Faction}
		d.byID[e.Faction] = fd
		d.order = append(d.order, e.Faction)
	}
	fd.RelationDelta += e.RelationDelta
	fd.ThreatDelta += e.ThreatDelta
	st := ledger.Standing(e.Faction)
	fd.RelationAfter = st.Relation
	fd.ThreatAfter = st.Threat
}

func (d *deltaSet) list() []model.FactionDelta {
	out := make([]model.FactionDelta, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.byID[id])
	}
	return out
}
