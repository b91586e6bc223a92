// Package faction holds the faction catalog and the threat decay rule.
package faction

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mercwork/internal/domain/model"
)

// DecayRate is the fraction of threat kept per idle day.
const DecayRate = 0.9

const day = 24 * time.Hour

// ReasonDecay tags history entries written by Decay.
const ReasonDecay = "idle decay"

// typeWeights scale relation impact by how hard a faction type reacts.
var typeWeights = map[model.FactionType]float64{
	model.FactionMegacorp:  1.5,
	model.FactionAuthority: 1.4,
	model.FactionSyndicate: 1.0,
	model.FactionGang:      0.6,
}

// Weight returns the impact weight for t, 1.0 for unknown types.
func Weight(t model.FactionType) float64 {
	if w, ok := typeWeights[t]; ok {
		return w
	}
	return 1.0
}

// Defaults is the catalog used when config supplies none.
func Defaults() []model.Faction {
	return []model.Faction{
		{ID: "helix", Name: "Helix Dynamics", Type: model.FactionMegacorp, Synonyms: []string{"helix"}, Allies: []string{"med"}},
		{ID: "kessler", Name: "Kessler-Vance", Type: model.FactionMegacorp, Synonyms: []string{"kessler", "kv corp"}},
		{ID: "med", Name: "Metro Enforcement Directorate", Type: model.FactionAuthority, Synonyms: []string{"police", "cops", "enforcement"}, Allies: []string{"helix"}},
		{ID: "lotus", Name: "Crimson Lotus", Type: model.FactionSyndicate, Synonyms: []string{"lotus", "triad"}},
		{ID: "hounds", Name: "Rust Hounds", Type: model.FactionGang, Synonyms: []string{"hounds"}, Allies: []string{"lotus"}},
	}
}

// Catalog indexes factions by id.
type Catalog struct {
	list []model.Faction
	byID map[string]model.Faction
}

// NewCatalog validates and indexes factions.
func NewCatalog(factions []model.Faction) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]model.Faction, len(factions))}
	for _, f := range factions {
		if f.ID == "" || f.Name == "" {
			return nil, fmt.Errorf("faction %q: %w", f.ID, ErrInvalidFaction)
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("faction %q: %w", f.ID, ErrDuplicateFaction)
		}
		c.byID[f.ID] = f
		c.list = append(c.list, f)
	}
	for _, f := range c.list {
		for _, a := range f.Allies {
			if _, ok := c.byID[a]; !ok {
				return nil, fmt.Errorf("faction %q ally %q: %w", f.ID, a, ErrInvalidFaction)
			}
		}
	}
	return c, nil
}

// All returns the catalog in declaration order.
func (c *Catalog) All() []model.Faction { return c.list }

// Get looks up a faction by id.
func (c *Catalog) Get(id string) (model.Faction, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// Decay sets threat to floor(base * 0.9^d) for d whole idle days since last
// activity on every standing with positive threat. Base is the threat left
// by the last real activity, and last activity is not moved, so running
// decay daily or once gives the same threat. It returns the number of
// standings changed.
func Decay(ledger *model.FactionLedger, now time.Time) int {
	changed := 0
	for id, st := range ledger.Standings {
		if st.Threat <= 0 || st.LastActivity.IsZero() {
			continue
		}
		days := int(now.Sub(st.LastActivity) / day)
		if days <= 0 {
			continue
		}
		base := max(st.BaseThreat, st.Threat)
		st.BaseThreat = base
		decayed := DecayedThreat(base, days)
		if decayed >= st.Threat {
			continue
		}
		ledger.History = append(ledger.History, model.FactionHistoryEntry{
			ID:          uuid.NewString(),
			Faction:     id,
			ThreatDelta: decayed - st.Threat,
			Reason:      ReasonDecay,
			At:          now,
		})
		st.Threat = decayed
		changed++
	}
	return changed
}

// DecayedThreat returns floor(threat * 0.9^days), never below zero.
func DecayedThreat(threat, days int) int {
	if threat <= 0 {
		return 0
	}
	if days <= 0 {
		return threat
	}
	return int(math.Floor(float64(threat) * math.Pow(DecayRate, float64(days))))
}
