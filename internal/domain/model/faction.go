package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRelation = -1000
	MaxRelation = 1000
	MinThreat   = 0
	MaxThreat   = 10
)

// FactionType drives how hard a faction reacts to an outcome.
type FactionType string

const (
	FactionMegacorp  FactionType = "megacorp"
	FactionAuthority FactionType = "authority"
	FactionSyndicate FactionType = "syndicate"
	FactionGang      FactionType = "gang"
)

// Faction is a catalog entry matched against narrative text.
type Faction struct {
	ID       string      `json:"id" koanf:"id"`
	Name     string      `json:"name" koanf:"name"`
	Type     FactionType `json:"type" koanf:"type"`
	Synonyms []string    `json:"synonyms,omitempty" koanf:"synonyms"`
	// Allies receive a damped share of this faction's relation impact.
	Allies []string `json:"allies,omitempty" koanf:"allies"`
}

// FactionStanding is a requester's current position with one faction.
type FactionStanding struct {
	Faction      string    `json:"faction"`
	Relation     int       `json:"relation"`
	Threat       int       `json:"threat"`
	// BaseThreat is the threat as of LastActivity. Idle decay is always
	// computed from it, so how often decay runs does not matter.
	BaseThreat   int       `json:"base_threat"`
	LastActivity time.Time `json:"last_activity"`
}

// FactionHistoryEntry is one append-only ledger line.
type FactionHistoryEntry struct {
	ID            string    `json:"id"`
	Faction       string    `json:"faction"`
	RelationDelta int       `json:"relation_delta"`
	ThreatDelta   int       `json:"threat_delta"`
	Reason        string    `json:"reason"`
	JobID         string    `json:"job_id,omitempty"`
	At            time.Time `json:"at"`
}

// FactionLedger is a requester's standings plus the history that produced
// them. History holds only entries appended since the ledger was loaded
// unless the loader filled it.
type FactionLedger struct {
	RequesterID string                      `json:"requester_id"`
	Standings   map[string]*FactionStanding `json:"standings"`
	History     []FactionHistoryEntry       `json:"history"`
}

// NewFactionLedger returns an empty ledger for requesterID.
func NewFactionLedger(requesterID string) *FactionLedger {
	return &FactionLedger{RequesterID: requesterID, Standings: make(map[string]*FactionStanding)}
}

// Standing returns the standing for faction, creating a neutral one.
func (l *FactionLedger) Standing(faction string) *FactionStanding {
	if l.Standings == nil {
		l.Standings = make(map[string]*FactionStanding)
	}
	st, ok := l.Standings[faction]
	if !ok {
		st = &FactionStanding{Faction: faction}
		l.Standings[faction] = st
	}
	return st
}

// Apply adds the deltas with clamping and appends a history entry carrying
// the deltas actually applied.
func (l *FactionLedger) Apply(faction string, relationDelta, threatDelta int, reason, jobID string, at time.Time) FactionHistoryEntry {
	st := l.Standing(faction)
	newRel := clamp(st.Relation+relationDelta, MinRelation, MaxRelation)
	newThreat := clamp(st.Threat+threatDelta, MinThreat, MaxThreat)
	entry := FactionHistoryEntry{
		ID:            uuid.NewString(),
		Faction:       faction,
		RelationDelta: newRel - st.Relation,
		ThreatDelta:   newThreat - st.Threat,
		Reason:        reason,
		JobID:         jobID,
		At:            at,
	}
	st.Relation = newRel
	st.Threat = newThreat
	st.BaseThreat = newThreat
	st.LastActivity = at
	l.History = append(l.History, entry)
	return entry
}

// RecentlyHostile reports whether faction saw a negative relation delta at
// or after since.
func (l *FactionLedger) RecentlyHostile(faction string, since time.Time) bool {
	for i := len(l.History) - 1; i >= 0; i-- {
		h := l.History[i]
		if h.Faction == faction && h.RelationDelta < 0 && !h.At.Before(since) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
